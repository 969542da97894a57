package model

// Session is a server-side login session referenced by an opaque token
// stored in a cookie.
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
}
