package models

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	STATUS_ACTIVE   = "active"
	STATUS_DISABLED = "disabled"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email       *string        `gorm:"uniqueIndex;type:varchar(200)" json:"email,omitempty" validate:"omitempty,email,max=200"`
	Password    string         `gorm:"type:text" json:"-" validate:"required,min=6"`
	Status      string         `gorm:"type:varchar(50);default:'active'" json:"status" validate:"oneof=active disabled"`
	LastLoginAt *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// IsActive reports whether the user status is active
func (u *User) IsActive() bool {
	return u.Status == STATUS_ACTIVE
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

func CreateUser(username string, email string, password string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     username,
		Password: pw,
		Status:   STATUS_ACTIVE,
	}
	if email != "" {
		u.Email = &email
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// NewShellUser builds the local user created on first sign-in through a
// provider. The username is derived from the association so it is unique
// without requiring the provider to supply one; the password is a random
// placeholder that can never be used for a password login.
func NewShellUser(access *AccountAccess) (*User, error) {
	placeholder := make([]byte, 24)
	if _, err := rand.Read(placeholder); err != nil {
		return nil, err
	}
	return CreateUser(ShellUsername(access.String()), "", hex.EncodeToString(placeholder))
}

// ShellUsername hashes the canonical association string into a username
// under 30 characters. Padding is stripped from the base64url form.
func ShellUsername(canonical string) string {
	digest := sha1.Sum([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}
