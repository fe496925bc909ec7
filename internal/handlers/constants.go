package handlers

const (
	CSRFFormField  = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"

	TabSpelling = "spelling"
	TabWriting  = "writing"

	PageTitle = "Spelling & Writing Practice"

	ErrInvalidFormData       = "Invalid form data"
	ErrInvalidCSRFToken      = "Invalid CSRF token"
	ErrTooManyRequests       = "Too many requests. Please try again later."
	ErrInternalServerError   = "Internal server error"
	ErrWorkspaceUnavailable  = "Practice workspace unavailable"
	ErrInvalidLogin          = "Invalid email or password"
	ErrEmailAlreadyInUse     = "An account with this email already exists"
	ErrOAuthNotConfigured    = "OAuth provider not configured"
	ErrOAuthInvalidState     = "Invalid OAuth state"
	ErrOAuthMissingCode      = "Missing authorization code"
	ErrOAuthExchangeFailed   = "Failed to exchange OAuth code"
	ErrOAuthAccountConflict  = "This email is already linked to another sign-in method"
	ErrInternalServerErrorUC = "Internal Server Error"
)
