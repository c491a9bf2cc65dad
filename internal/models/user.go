// internal/models/user.go
package models

import (
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"`
	IsActive     bool   `json:"is_active" gorm:"not null"`
	IsAdmin      bool   `json:"is_admin" gorm:"not null"`
	IsSupplier   bool   `json:"is_supplier" gorm:"not null"`
	IsCustomer   bool   `json:"is_customer" gorm:"not null"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) Capabilities() Capabilities {
	var caps Capabilities
	if u.IsAdmin {
		caps = caps.With(CapabilityAdmin)
	}
	if u.IsSupplier {
		caps = caps.With(CapabilitySupplier)
	}
	if u.IsCustomer {
		caps = caps.With(CapabilityCustomer)
	}
	return caps
}

func (u *User) Identity() Identity {
	return Identity{
		UserID:       u.ID,
		Username:     u.Username,
		Capabilities: u.Capabilities(),
	}
}
