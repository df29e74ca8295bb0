package types

// AuthenticatedUser is what the auth middleware stores under ContextUserKey.
type AuthenticatedUser struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}
