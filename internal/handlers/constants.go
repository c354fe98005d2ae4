package handlers

const (
	SessionCookieName = "session_id"
	FlashCookieName   = "mochi_flash"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
)
