package errors

// Reason narrows a Code to the specific failure that occurred.
type Reason string

const (
	ReasonBodyValidation Reason = "BODY_VALIDATION_ERROR"

	ReasonNoAuthorizationToken Reason = "NO_AUTHORIZATION_TOKEN"
	ReasonNoBearerToken        Reason = "NO_BEARER_TOKEN"
	ReasonInvalidToken         Reason = "INVALID_TOKEN"

	ReasonPermissionDenied     Reason = "PERMISSION_DENIED"
	ReasonRolePermissionDenied Reason = "ROLE_PERMISSION_DENIED"
	ReasonResourceOwner        Reason = "RESOURCE_OWNER_ERROR"

	ReasonCreateFailed             Reason = "CREATE_FAILED"
	ReasonUpdateFailed             Reason = "UPDATE_FAILED"
	ReasonRetrieveFailed           Reason = "RETRIEVE_FAILED"
	ReasonDeleteFailed             Reason = "DELETE_FAILED"
	ReasonTransactionFailed        Reason = "TRANSACTION_FAILED"
	ReasonUnpaidOrderDeleteFailed  Reason = "UNPAID_ORDER_DELETE_FAILED"
	ReasonOrderProductNotFound     Reason = "PRODUCT_NOT_FOUND"
	ReasonOutOfStock               Reason = "OUT_OF_STOCK"
	ReasonSessionCreationFailed    Reason = "SESSION_CREATION_FAILED"
	ReasonMissingSignature         Reason = "MISSING_SIGNATURE"
	ReasonInvalidSignature         Reason = "INVALID_SIGNATURE"
	ReasonMissingMetadata          Reason = "MISSING_METADATA"
	ReasonUnhandledEvent           Reason = "UNHANDLED_EVENT"
	ReasonEmptyCart                Reason = "EMPTY_CART"
	ReasonUserDataNotFound         Reason = "USER_DATA_NOT_FOUND"
	ReasonProductNotFound          Reason = "PRODUCT_NOT_FOUND"
	ReasonReviewNotFound           Reason = "REVIEW_NOT_FOUND"
	ReasonPrivilegedUserNotFound   Reason = "PRIVILEGED_USER_NOT_FOUND"
)

type reasonKey struct {
	code   Code
	reason Reason
}

var messageByReason = map[reasonKey]string{
	{CodeValidation, ReasonBodyValidation}: "Request body validation failed.",

	{CodeUnauthorized, ReasonNoAuthorizationToken}: "Request header missing authorization token.",
	{CodeUnauthorized, ReasonNoBearerToken}:        "Token should be in the format 'Bearer <USER_TOKEN>'.",
	{CodeUnauthorized, ReasonInvalidToken}:         "Authorization token is invalid.",

	{CodeForbidden, ReasonPermissionDenied}:     "You lack the permission to perform this action.",
	{CodeForbidden, ReasonRolePermissionDenied}: "Your role does not permit this action.",
	{CodeForbidden, ReasonResourceOwner}:        "You are not the owner of this resource.",

	{CodeDatabase, ReasonCreateFailed}:            "Data creation failed.",
	{CodeDatabase, ReasonUpdateFailed}:            "Data update failed.",
	{CodeDatabase, ReasonRetrieveFailed}:          "Data retrieval failed.",
	{CodeDatabase, ReasonDeleteFailed}:            "Data deletion failed.",
	{CodeDatabase, ReasonTransactionFailed}:       "Transaction process encountered an error.",
	{CodeDatabase, ReasonUnpaidOrderDeleteFailed}: "Failed to delete unpaid order.",

	{CodeOrder, ReasonOrderProductNotFound}: "The requested product could not be found.",
	{CodeOrder, ReasonOutOfStock}:           "Requested quantity exceeds available stock.",

	{CodePayment, ReasonSessionCreationFailed}: "Payment session creation failed.",
	{CodePayment, ReasonMissingSignature}:      "Payment signature is missing.",
	{CodePayment, ReasonInvalidSignature}:      "Payment signature is invalid.",
	{CodePayment, ReasonMissingMetadata}:       "Required payment metadata is missing.",
	{CodePayment, ReasonUnhandledEvent}:        "Unhandled event type.",
	{CodePayment, ReasonEmptyCart}:             "There are no products in your cart.",

	{CodeNotFound, ReasonUserDataNotFound}: "Your data could not be found.",
	{CodeNotFound, ReasonProductNotFound}:  "The product you are looking for could not be found.",
	{CodeNotFound, ReasonReviewNotFound}:   "The review could not be found.",

	{CodeNotFound, ReasonPrivilegedUserNotFound}: "No privileged user exists with that id.",
}

// ReasonMessage returns the canonical message for a code/reason pair.
func ReasonMessage(code Code, reason Reason) string {
	if msg, ok := messageByReason[reasonKey{code, reason}]; ok {
		return msg
	}
	return PolicyFor(code).Fallback
}

func withReason(code Code, reason Reason, cause error) *Error {
	return &Error{code: code, reason: reason, message: ReasonMessage(code, reason), cause: cause}
}

// Database reports a failed store operation.
func Database(reason Reason, cause error) *Error {
	return withReason(CodeDatabase, reason, cause)
}

// Order reports a business-rule violation during checkout.
func Order(reason Reason) *Error {
	return withReason(CodeOrder, reason, nil)
}

// Payment reports a gateway or session failure.
func Payment(reason Reason, cause error) *Error {
	return withReason(CodePayment, reason, cause)
}

// NotFound reports a missing user or product referenced by id.
func NotFound(reason Reason) *Error {
	return withReason(CodeNotFound, reason, nil)
}

// Validation reports malformed input. An empty message falls back to the reason text.
func Validation(reason Reason, message string) *Error {
	err := withReason(CodeValidation, reason, nil)
	if message != "" {
		err.message = message
	}
	return err
}

// Unauthorized reports a missing or rejected credential.
func Unauthorized(reason Reason, cause error) *Error {
	return withReason(CodeUnauthorized, reason, cause)
}

// Forbidden reports an authenticated caller without the required rights.
func Forbidden(reason Reason) *Error {
	return withReason(CodeForbidden, reason, nil)
}
