package users

import "time"

// Roles a user can hold. Role determines the expected account shape and
// which administrative operations are allowed.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	College   string    `json:"college"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
