package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Provider is the admin-managed configuration for one upstream OAuth
// service. An empty RequestTokenURL marks the provider as OAuth 2.0.
// ConsumerKey and ConsumerSecret are stored encrypted at rest; the
// repository layer decrypts them on read.
type Provider struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"uniqueIndex;type:varchar(50)" json:"name" validate:"required,min=2,max=50"`
	RequestTokenURL  string    `gorm:"type:varchar(255)" json:"request_token_url" validate:"omitempty,url,max=255"`
	AuthorizationURL string    `gorm:"type:varchar(255)" json:"authorization_url" validate:"required,url,max=255"`
	AccessTokenURL   string    `gorm:"type:varchar(255)" json:"access_token_url" validate:"required,url,max=255"`
	ProfileURL       string    `gorm:"type:varchar(255)" json:"profile_url" validate:"required,url,max=255"`
	IdentifierPath   string    `gorm:"type:varchar(100)" json:"identifier_path" validate:"max=100"`
	ConsumerKey      *string   `gorm:"type:text" json:"-"`
	ConsumerSecret   *string   `gorm:"type:text" json:"-"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Provider) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// Enabled reports whether the provider can be used for sign-in: both
// consumer credentials must be set.
func (p *Provider) Enabled() bool {
	return p.ConsumerKey != nil && p.ConsumerSecret != nil
}

// Key returns the plaintext consumer key, or "" when unset.
func (p *Provider) Key() string {
	if p.ConsumerKey == nil {
		return ""
	}
	return *p.ConsumerKey
}

// Secret returns the plaintext consumer secret, or "" when unset.
func (p *Provider) Secret() string {
	if p.ConsumerSecret == nil {
		return ""
	}
	return *p.ConsumerSecret
}

// ProfileIdentifierPath is the dot separated path into the profile
// response used to extract the remote account identifier.
func (p *Provider) ProfileIdentifierPath() string {
	if p.IdentifierPath == "" {
		return "id"
	}
	return p.IdentifierPath
}

// BeforeSave normalizes empty credential strings to NULL so Enabled()
// only has one representation of "not configured" to check.
func (p *Provider) BeforeSave(tx *gorm.DB) error {
	if p.ConsumerKey != nil && *p.ConsumerKey == "" {
		p.ConsumerKey = nil
	}
	if p.ConsumerSecret != nil && *p.ConsumerSecret == "" {
		p.ConsumerSecret = nil
	}
	return nil
}
