package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleVendedor = "vendedor"
)

// User cuenta de operador de la farmacia. La contraseña se guarda solo como hash bcrypt.
type User struct {
	Username     string
	PasswordHash string
	Role         string
	Active       bool
}

// Session token emitido tras un login válido.
type Session struct {
	TokenID   string // jti, usado para revocación
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
