package handler

const (
	errInternalServer = "Internal server error"
	errTokenInvalid   = "Token is invalid or expired"
	errInvalidEmail   = "Enter a valid email address"
	errListNotFound   = "List not found"
	errEmptyItem      = "You can't have an empty list item"
	errDuplicateItem  = "You've already got this in your list"
	errUnauthorized   = "Unauthorized"
)

const loginEmailSent = "Check your email, we've sent you a link you can use to log in."
