package domain

// Registration is a new account request forwarded to the identity service.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}

// RegisteredUser is the account summary echoed back by the identity service.
type RegisteredUser map[string]any
