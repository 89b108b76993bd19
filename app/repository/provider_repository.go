package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mlavin/allaccess/app/models"
	"github.com/mlavin/allaccess/internal/pkg/crypt"
)

// providerRepository implements the ProviderRepository interface
type providerRepository struct {
	db    *gorm.DB
	codec *crypt.Codec
}

// NewProviderRepository creates a new provider repository instance
func NewProviderRepository(db *gorm.DB, codec *crypt.Codec) ProviderRepository {
	return &providerRepository{db: db, codec: codec}
}

func (r *providerRepository) Create(provider *models.Provider) error {
	if err := provider.Validate(); err != nil {
		return err
	}
	stored := *provider
	if err := r.encrypt(&stored); err != nil {
		return err
	}
	if err := r.db.Create(&stored).Error; err != nil {
		return err
	}
	provider.ID = stored.ID
	return nil
}

func (r *providerRepository) Update(provider *models.Provider) error {
	if err := provider.Validate(); err != nil {
		return err
	}
	stored := *provider
	if err := r.encrypt(&stored); err != nil {
		return err
	}
	return r.db.Save(&stored).Error
}

func (r *providerRepository) GetByName(name string) (*models.Provider, error) {
	var provider models.Provider
	if err := r.db.Where("name = ?", name).First(&provider).Error; err != nil {
		return nil, err
	}
	if err := r.decrypt(&provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) GetEnabledByName(name string) (*models.Provider, error) {
	provider, err := r.GetByName(name)
	if err != nil {
		return nil, err
	}
	if !provider.Enabled() {
		return nil, gorm.ErrRecordNotFound
	}
	return provider, nil
}

func (r *providerRepository) ListEnabled() ([]models.Provider, error) {
	var providers []models.Provider
	err := r.db.
		Where("consumer_key IS NOT NULL AND consumer_secret IS NOT NULL").
		Order("name").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}
	for i := range providers {
		if err := r.decrypt(&providers[i]); err != nil {
			return nil, err
		}
	}
	return providers, nil
}

func (r *providerRepository) List() ([]models.Provider, error) {
	var providers []models.Provider
	if err := r.db.Order("name").Find(&providers).Error; err != nil {
		return nil, err
	}
	for i := range providers {
		if err := r.decrypt(&providers[i]); err != nil {
			return nil, err
		}
	}
	return providers, nil
}

func (r *providerRepository) encrypt(provider *models.Provider) error {
	key, err := encryptField(r.codec, provider.ConsumerKey)
	if err != nil {
		return fmt.Errorf("provider %s: encrypting consumer key: %w", provider.Name, err)
	}
	secret, err := encryptField(r.codec, provider.ConsumerSecret)
	if err != nil {
		return fmt.Errorf("provider %s: encrypting consumer secret: %w", provider.Name, err)
	}
	provider.ConsumerKey = key
	provider.ConsumerSecret = secret
	return nil
}

func (r *providerRepository) decrypt(provider *models.Provider) error {
	key, err := decryptField(r.codec, provider.ConsumerKey)
	if err != nil {
		return fmt.Errorf("provider %s: decrypting consumer key: %w", provider.Name, err)
	}
	secret, err := decryptField(r.codec, provider.ConsumerSecret)
	if err != nil {
		return fmt.Errorf("provider %s: decrypting consumer secret: %w", provider.Name, err)
	}
	provider.ConsumerKey = key
	provider.ConsumerSecret = secret
	return nil
}

// encryptField encrypts a nullable secret column; NULL and "" stay NULL.
func encryptField(codec *crypt.Codec, value *string) (*string, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	record, err := codec.Encrypt(*value)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// decryptField decrypts a nullable secret column. Legacy plaintext values
// pass through unchanged; a signature mismatch is a real error, not
// absence of data.
func decryptField(codec *crypt.Codec, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	plain, err := codec.Decrypt(*value)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}
