package httputil

// Machine-readable error codes returned alongside human-readable messages.
// Clients should branch on these, not on message text.
const (
	CodeInvalidRequestBody = "invalid_request_body"
	CodeMissingFields      = "missing_fields"
	CodeValidationError    = "validation_error"
	CodeDuplicateUserName  = "duplicate_user_name"
	CodeNoSuchUser         = "no_such_user"
	CodeWrongPassword      = "wrong_password"
	CodeMissingAuth        = "missing_auth"
	CodeInvalidAuthHeader  = "invalid_auth_header"
	CodeTokenExpired       = "token_expired"
	CodeInvalidToken       = "invalid_token"
	CodeNotOwner           = "not_resource_owner"
	CodeNotFound           = "resource_not_found"
	CodeTooManyRequests    = "too_many_requests"
	CodeInternalError      = "internal_error"
)
