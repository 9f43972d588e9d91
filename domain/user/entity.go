package user

// Claims identifies the caller behind a verified access token.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
