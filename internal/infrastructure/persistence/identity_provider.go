package persistence

import (
	"context"
	"errors"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormIdentityProvider implements IdentityProvider using GORM
type GormIdentityProvider struct {
	db *gorm.DB
}

// NewGormIdentityProvider creates a new GormIdentityProvider
func NewGormIdentityProvider(db *gorm.DB) *GormIdentityProvider {
	return &GormIdentityProvider{db: db}
}

// LookupUser returns the profile emitted in identify calls for the user.
func (p *GormIdentityProvider) LookupUser(ctx context.Context, userID string) (tracking.UserProfile, error) {
	var model models.UserModel
	err := p.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tracking.UserProfile{}, tracking.ErrUserNotFound
	}
	if err != nil {
		return tracking.UserProfile{}, err
	}
	return model.ToDomain(), nil
}

// Ensure GormIdentityProvider implements IdentityProvider
var _ tracking.IdentityProvider = (*GormIdentityProvider)(nil)
