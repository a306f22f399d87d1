package domain

import "time"

// User represents a user in the system
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(id int64) (*User, error)
	ExistsByID(id int64) (bool, error)
	GetByNameAndEmail(name, email string) (*User, error)
	Create(user *User) (*User, error)
}
