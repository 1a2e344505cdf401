package domain

// User is a registered account. The password hash lives in storage only and
// is never part of this struct.
type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
