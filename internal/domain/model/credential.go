package model

// User is the minimal display object returned by the backend on login.
type User struct {
	Username string `json:"username"`
}

// Credential pairs an opaque bearer token with the user it was issued to.
// It is created from a successful login response and destroyed on logout or
// on any 401 from the backend.
type Credential struct {
	Token string
	User  User
}

// LoginRequest is the body posted to the backend login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
