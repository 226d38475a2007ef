package models

// Person is a customer or the identity behind a staff/admin user.
// Contact is unique across all persons.
type Person struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Contact      string `json:"contact"`
	Address      string `json:"address"`
	PasswordHash string `json:"-"`
}
