package repository

import (
	"sync"

	"gorm.io/gorm"

	"github.com/mlavin/allaccess/internal/pkg/crypt"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	codec *crypt.Codec
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB, codec *crypt.Codec) *Factory {
	return &Factory{db: db, codec: codec}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db, f.codec)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetProviderRepository returns the provider repository instance
func (f *Factory) GetProviderRepository() ProviderRepository {
	return f.GetRepositories().Provider
}

// GetAccountAccessRepository returns the account access repository instance
func (f *Factory) GetAccountAccessRepository() AccountAccessRepository {
	return f.GetRepositories().Access
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB, codec *crypt.Codec) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db, codec)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
