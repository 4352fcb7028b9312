package types

// AddressLines holds the free-form lines of a postal address.
type AddressLines struct {
	Address1 string `json:"address1" firestore:"address1" validate:"required,max=200"`
	Address2 string `json:"address2" firestore:"address2" validate:"required,max=200"`
	Address3 string `json:"address3" firestore:"address3" validate:"required,max=200"`
}

// Address is a shipping destination. ZipCode uses the NNN-NNNN form.
type Address struct {
	RecipientName string       `json:"recipient_name" firestore:"recipient_name" validate:"required,max=100"`
	ZipCode       string       `json:"zip_code" firestore:"zip_code" validate:"required,zipcode"`
	Address       AddressLines `json:"address" firestore:"address" validate:"required"`
}

// UserAddress is an address saved on a user profile.
type UserAddress struct {
	Address
	Default bool `json:"default" firestore:"default"`
}
