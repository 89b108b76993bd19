package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlavin/allaccess/app/models"
	"github.com/mlavin/allaccess/internal/pkg/crypt"
)

// accountAccessRepository implements the AccountAccessRepository interface
type accountAccessRepository struct {
	db    *gorm.DB
	codec *crypt.Codec
}

// NewAccountAccessRepository creates a new account access repository instance
func NewAccountAccessRepository(db *gorm.DB, codec *crypt.Codec) AccountAccessRepository {
	return &accountAccessRepository{db: db, codec: codec}
}

// Upsert rides on the unique (identifier, provider_id) index: a concurrent
// callback for the same remote account turns into an update of the access
// token instead of a duplicate row. Identity fields and the bound user are
// never touched on conflict.
func (r *accountAccessRepository) Upsert(access *models.AccountAccess) error {
	token, err := encryptField(r.codec, access.AccessToken)
	if err != nil {
		return fmt.Errorf("account access %s: encrypting token: %w", access.Identifier, err)
	}

	stored := models.AccountAccess{
		Identifier:  access.Identifier,
		ProviderID:  access.ProviderID,
		UserID:      access.UserID,
		AccessToken: token,
	}
	err = r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}, {Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "updated_at"}),
	}).Create(&stored).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the canonical row (existing ID, bound user).
	current, err := r.GetByProviderAndIdentifier(access.ProviderID, access.Identifier)
	if err != nil {
		return err
	}
	access.ID = current.ID
	access.UserID = current.UserID
	access.CreatedAt = current.CreatedAt
	return nil
}

func (r *accountAccessRepository) GetByProviderAndIdentifier(providerID uint, identifier string) (*models.AccountAccess, error) {
	var access models.AccountAccess
	err := r.db.
		Preload("Provider").
		Where("provider_id = ? AND identifier = ?", providerID, identifier).
		First(&access).Error
	if err != nil {
		return nil, err
	}
	if err := r.decrypt(&access); err != nil {
		return nil, err
	}
	return &access, nil
}

func (r *accountAccessRepository) GetByNaturalKey(providerName, identifier string) (*models.AccountAccess, error) {
	var access models.AccountAccess
	err := r.db.
		Preload("Provider").
		Joins("JOIN providers ON providers.id = account_accesses.provider_id").
		Where("providers.name = ? AND account_accesses.identifier = ?", providerName, identifier).
		First(&access).Error
	if err != nil {
		return nil, err
	}
	if err := r.decrypt(&access); err != nil {
		return nil, err
	}
	return &access, nil
}

// AttachUser sets the owning user on a fresh association. The guard on
// user_id IS NULL keeps the binding write-once even under concurrent
// callbacks.
func (r *accountAccessRepository) AttachUser(access *models.AccountAccess, userID uint) error {
	result := r.db.Model(&models.AccountAccess{}).
		Where("id = ? AND user_id IS NULL", access.ID).
		Update("user_id", userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("account access %d: user already attached", access.ID)
	}
	access.UserID = &userID
	return nil
}

func (r *accountAccessRepository) GetUserFor(providerID uint, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.
		Joins("JOIN account_accesses ON account_accesses.user_id = users.id").
		Where("account_accesses.provider_id = ? AND account_accesses.identifier = ?", providerID, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *accountAccessRepository) ListByUser(userID uint) ([]models.AccountAccess, error) {
	var accesses []models.AccountAccess
	err := r.db.
		Preload("Provider").
		Where("user_id = ?", userID).
		Find(&accesses).Error
	if err != nil {
		return nil, err
	}
	for i := range accesses {
		if err := r.decrypt(&accesses[i]); err != nil {
			return nil, err
		}
	}
	return accesses, nil
}

func (r *accountAccessRepository) decrypt(access *models.AccountAccess) error {
	token, err := decryptField(r.codec, access.AccessToken)
	if err != nil {
		return fmt.Errorf("account access %s: decrypting token: %w", access.Identifier, err)
	}
	access.AccessToken = token
	// The preloaded provider carries encrypted credentials too.
	key, err := decryptField(r.codec, access.Provider.ConsumerKey)
	if err != nil {
		return fmt.Errorf("account access %s: decrypting provider key: %w", access.Identifier, err)
	}
	secret, err := decryptField(r.codec, access.Provider.ConsumerSecret)
	if err != nil {
		return fmt.Errorf("account access %s: decrypting provider secret: %w", access.Identifier, err)
	}
	access.Provider.ConsumerKey = key
	access.Provider.ConsumerSecret = secret
	return nil
}
