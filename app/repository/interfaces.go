package repository

import (
	"gorm.io/gorm"

	"github.com/mlavin/allaccess/app/models"
	"github.com/mlavin/allaccess/internal/pkg/crypt"
)

// ProviderRepository defines the interface for provider configuration
// lookups. Secret fields are decrypted on read and encrypted on write;
// models carry plaintext in memory only.
type ProviderRepository interface {
	Create(provider *models.Provider) error
	Update(provider *models.Provider) error
	GetByName(name string) (*models.Provider, error)
	// GetEnabledByName returns the provider only when it is configured for
	// use (both consumer credentials present).
	GetEnabledByName(name string) (*models.Provider, error)
	ListEnabled() ([]models.Provider, error)
	List() ([]models.Provider, error)
}

// AccountAccessRepository defines the interface for provider-account links.
type AccountAccessRepository interface {
	// Upsert atomically creates the association or, when the
	// (identifier, provider) pair already exists, overwrites only the
	// stored access token.
	Upsert(access *models.AccountAccess) error
	GetByProviderAndIdentifier(providerID uint, identifier string) (*models.AccountAccess, error)
	// GetByNaturalKey is the name-based convenience overload; the provider
	// reference is the canonical identity.
	GetByNaturalKey(providerName, identifier string) (*models.AccountAccess, error)
	// AttachUser binds a user to the association once; an already bound
	// association is left untouched.
	AttachUser(access *models.AccountAccess, userID uint) error
	GetUserFor(providerID uint, identifier string) (*models.User, error)
	ListByUser(userID uint) ([]models.AccountAccess, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByName(name string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	UpdateLastLogin(id uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Provider ProviderRepository
	Access   AccountAccessRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB, codec *crypt.Codec) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Provider: NewProviderRepository(db, codec),
		Access:   NewAccountAccessRepository(db, codec),
	}
}
