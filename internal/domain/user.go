package domain

// User is the caller identity resolved from the directory service.
// It is never persisted locally.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
