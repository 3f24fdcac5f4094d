package auth

// AuthenticateRequest asks the auth module to resolve a bearer token.
type AuthenticateRequest struct {
	Token string `json:"token"`
}

// AuthenticateResponse carries the resolved identity, or Valid=false
// for any authentication failure.
type AuthenticateResponse struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"user_id,omitempty"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// GetUserRequest asks for a user record by id.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}

// GetUserResponse carries a user record.
type GetUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}
