// Package adapters provides TokenStore implementations for the token feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chart_backend/internal/feature/token/domain/entity"
	"chart_backend/internal/feature/token/usecase"
	"chart_backend/internal/shared/apperr"
)

// singletonID is the fixed primary key of the only token row.
const singletonID = 1

// TokenModel is the gorm model for the cached provider token.
type TokenModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false"`
	AccessToken string    `gorm:"type:text;not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}

// TableName overrides the default table name.
func (TokenModel) TableName() string {
	return "access_tokens"
}

// tokenGorm is a relational implementation of usecase.TokenStore.
type tokenGorm struct {
	db *gorm.DB
}

// Compile-time check to ensure tokenGorm implements TokenStore.
var _ usecase.TokenStore = (*tokenGorm)(nil)

// NewTokenGorm creates a new instance of tokenGorm.
func NewTokenGorm(db *gorm.DB) *tokenGorm {
	return &tokenGorm{db: db}
}

// Get returns the cached token or apperr.ErrNotFound.
func (r *tokenGorm) Get(ctx context.Context) (*entity.CachedToken, error) {
	var m TokenModel
	if err := r.db.WithContext(ctx).First(&m, singletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &entity.CachedToken{Value: m.AccessToken, ExpiresAt: m.ExpiresAt}, nil
}

// Put inserts the singleton row or overwrites it.
func (r *tokenGorm) Put(ctx context.Context, token *entity.CachedToken) error {
	m := TokenModel{
		ID:          singletonID,
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "expires_at", "updated_at"}),
	}).Create(&m).Error
}
