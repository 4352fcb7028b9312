package validators

import (
	"github.com/angelmondragon/storefront-backend/internal/payment"
	"github.com/angelmondragon/storefront-backend/internal/privileged"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type CreateProductRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Thumbnail        string   `json:"thumbnail" validate:"required"`
	Images           []string `json:"images" validate:"dive,required"`
	ShortDescription string   `json:"short_description" validate:"required,min=5"`
	LongDescription  string   `json:"long_description" validate:"required,min=10"`
	Price            int64    `json:"price" validate:"required,min=100"`
	CategoryID       string   `json:"category_id" validate:"required"`
	Stock            int64    `json:"stock" validate:"required,gt=0"`
	CreatedBy        string   `json:"created_by" validate:"required"`
}

func (r CreateProductRequest) ToInput() product.CreateProductInput {
	return product.CreateProductInput{
		Name:             SanitizeString(r.Name),
		Thumbnail:        SanitizeString(r.Thumbnail),
		Images:           sanitizeAll(r.Images),
		ShortDescription: SanitizeString(r.ShortDescription),
		LongDescription:  SanitizeString(r.LongDescription),
		Price:            r.Price,
		CategoryID:       SanitizeString(r.CategoryID),
		Stock:            r.Stock,
	}
}

type UpdateProductRequest struct {
	Name             *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Thumbnail        *string   `json:"thumbnail" validate:"omitempty,min=1"`
	Images           *[]string `json:"images" validate:"omitempty,dive,required"`
	ShortDescription *string   `json:"short_description" validate:"omitempty,min=5"`
	LongDescription  *string   `json:"long_description" validate:"omitempty,min=10"`
	Price            *int64    `json:"price" validate:"omitempty,min=100"`
	CategoryID       *string   `json:"category_id" validate:"omitempty,min=1"`
	Stock            *int64    `json:"stock" validate:"omitempty,gte=0"`
}

func (r UpdateProductRequest) ToInput() product.UpdateProductInput {
	input := product.UpdateProductInput{
		Name:             sanitizePtr(r.Name),
		Thumbnail:        sanitizePtr(r.Thumbnail),
		ShortDescription: sanitizePtr(r.ShortDescription),
		LongDescription:  sanitizePtr(r.LongDescription),
		Price:            r.Price,
		CategoryID:       sanitizePtr(r.CategoryID),
		Stock:            r.Stock,
	}
	if r.Images != nil {
		images := sanitizeAll(*r.Images)
		input.Images = &images
	}
	return input
}

type CartUpdateRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type UserAddressRequest struct {
	types.Address
	Default bool `json:"default"`
}

func (a UserAddressRequest) toUserAddress() types.UserAddress {
	return types.UserAddress{Address: sanitizeAddress(a.Address), Default: a.Default}
}

type CreateUserRequest struct {
	Name      string               `json:"name" validate:"required,max=100"`
	Email     string               `json:"email" validate:"required,email"`
	Addresses []UserAddressRequest `json:"addresses" validate:"required,min=1,dive"`
	Role      string               `json:"role" validate:"required,oneof=buyer seller"`
}

func (r CreateUserRequest) ToInput() users.CreateUserInput {
	addresses := make([]types.UserAddress, 0, len(r.Addresses))
	for _, a := range r.Addresses {
		addresses = append(addresses, a.toUserAddress())
	}
	return users.CreateUserInput{
		Name:      SanitizeString(r.Name),
		Email:     r.Email,
		Addresses: addresses,
		Role:      enums.Role(r.Role),
	}
}

type UpdateUserRequest struct {
	Name      *string               `json:"name" validate:"omitempty,min=1,max=100"`
	Email     *string               `json:"email" validate:"omitempty,email"`
	Addresses *[]UserAddressRequest `json:"addresses" validate:"omitempty,min=1,dive"`
}

func (r UpdateUserRequest) ToInput() users.UpdateUserInput {
	input := users.UpdateUserInput{
		Name:  sanitizePtr(r.Name),
		Email: r.Email,
	}
	if r.Addresses != nil {
		addresses := make([]types.UserAddress, 0, len(*r.Addresses))
		for _, a := range *r.Addresses {
			addresses = append(addresses, a.toUserAddress())
		}
		input.Addresses = &addresses
	}
	return input
}

type ReviewRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Title       string `json:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (r ReviewRequest) ToInput() reviews.CreateReviewInput {
	return reviews.CreateReviewInput{
		ProductID:   SanitizeString(r.ProductID),
		Title:       SanitizeString(r.Title),
		Description: SanitizeString(r.Description),
	}
}

type UpdateReviewRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=5,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (r UpdateReviewRequest) ToInput() reviews.UpdateReviewInput {
	return reviews.UpdateReviewInput{
		Title:       sanitizePtr(r.Title),
		Description: sanitizePtr(r.Description),
	}
}

// PrivilegedUserRequest grants rights to the auth account named by ID.
type PrivilegedUserRequest struct {
	ID           string `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"required,email"`
	AccessRights string `json:"access_rights" validate:"required,oneof=admin moderator"`
}

func (r PrivilegedUserRequest) ToInput() privileged.CreateInput {
	return privileged.CreateInput{
		ID:           SanitizeString(r.ID),
		Name:         SanitizeString(r.Name),
		Email:        r.Email,
		AccessRights: enums.AccessRights(r.AccessRights),
	}
}

type UpdatePrivilegedUserRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email        *string `json:"email" validate:"omitempty,email"`
	AccessRights *string `json:"access_rights" validate:"omitempty,oneof=admin moderator"`
}

func (r UpdatePrivilegedUserRequest) ToInput() privileged.UpdateInput {
	input := privileged.UpdateInput{
		Name:  sanitizePtr(r.Name),
		Email: r.Email,
	}
	if r.AccessRights != nil {
		rights := enums.AccessRights(*r.AccessRights)
		input.AccessRights = &rights
	}
	return input
}

type OrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=unpaid paid shipped delivered"`
}

type PaymentRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
	SuccessURL      string        `json:"success_url" validate:"required,url"`
	CancelURL       string        `json:"cancel_url" validate:"required,url"`
}

func (r PaymentRequest) ToDetail() payment.CheckoutDetail {
	return payment.CheckoutDetail{
		ShippingAddress: sanitizeAddress(r.ShippingAddress),
		SuccessURL:      r.SuccessURL,
		CancelURL:       r.CancelURL,
	}
}

func sanitizeAddress(a types.Address) types.Address {
	return types.Address{
		RecipientName: SanitizeString(a.RecipientName),
		ZipCode:       SanitizeString(a.ZipCode),
		Address: types.AddressLines{
			Address1: SanitizeString(a.Address.Address1),
			Address2: SanitizeString(a.Address.Address2),
			Address3: SanitizeString(a.Address.Address3),
		},
	}
}
