package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an operator of the shop counter
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	FullName     string     `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=OWNER STAFF"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(64);default:''" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword verifies a plain password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// Privileges returns the privilege codes granted by the user's role
func (u *User) Privileges() []string {
	return RolePrivileges[u.Role]
}

// HasPrivilege checks if the user's role grants a privilege
func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges() {
		if p == code {
			return true
		}
	}
	return false
}
