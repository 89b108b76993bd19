package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AccountAccess links one remote provider account to a local user. The
// (identifier, provider) pair is unique: a remote account maps to at most
// one local association. AccessToken is stored encrypted at rest.
type AccountAccess struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Identifier  string    `gorm:"index:idx_identifier_provider,unique;type:varchar(191)" json:"identifier"`
	ProviderID  uint      `gorm:"index:idx_identifier_provider,unique" json:"provider_id"`
	Provider    Provider  `gorm:"foreignKey:ProviderID" json:"-"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	AccessToken *string   `gorm:"type:text" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// String is the canonical form of the association, used to derive shell
// usernames. It must stay stable: changing it changes generated usernames.
func (a *AccountAccess) String() string {
	return fmt.Sprintf("%s %s", a.Provider.Name, a.Identifier)
}

// Token returns the plaintext access token, or "" when unset.
func (a *AccountAccess) Token() string {
	if a.AccessToken == nil {
		return ""
	}
	return *a.AccessToken
}

// BeforeSave normalizes an empty token to NULL.
func (a *AccountAccess) BeforeSave(tx *gorm.DB) error {
	if a.AccessToken != nil && *a.AccessToken == "" {
		a.AccessToken = nil
	}
	return nil
}
