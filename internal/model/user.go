package model

// Token is the backend's login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the authenticated account returned by the /users/me probe.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
