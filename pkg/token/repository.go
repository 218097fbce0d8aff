package token

import (
	"context"
	"errors"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenAlreadyUsed = errors.New("token already used")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type tokenModel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;column:id"`
	Token            string     `gorm:"column:token;uniqueIndex"`
	TabletFeedbackID *uuid.UUID `gorm:"type:uuid;column:tablet_feedback_id"`
	ExpiresAt        time.Time  `gorm:"column:expires_at"`
	Used             bool       `gorm:"column:used"`
	UsedAt           *time.Time `gorm:"column:used_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
}

func (tokenModel) TableName() string { return "qr_tokens" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&tokenModel{})
}

func (r *Repository) Create(ctx context.Context, tok models.LinkingToken) error {
	record := tokenModel{
		ID:               tok.ID,
		Token:            tok.Value,
		TabletFeedbackID: tok.TabletFeedbackID,
		ExpiresAt:        tok.ExpiresAt,
		Used:             tok.Used,
		UsedAt:           tok.UsedAt,
		CreatedAt:        time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) FindByValue(ctx context.Context, value string) (models.LinkingToken, error) {
	var record tokenModel
	if err := r.db.WithContext(ctx).First(&record, "token = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LinkingToken{}, ErrTokenNotFound
		}
		return models.LinkingToken{}, err
	}
	return record.toDomain(), nil
}

// MarkUsed flips the used flag with a conditional update so that exactly one
// redemption wins. Returns ErrTokenAlreadyUsed when the flag was already set.
func (r *Repository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&tokenModel{}).
		Where("id = ? AND used = ?", id, false).
		Updates(map[string]interface{}{"used": true, "used_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var record tokenModel
		if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		return ErrTokenAlreadyUsed
	}
	return nil
}

func (m tokenModel) toDomain() models.LinkingToken {
	return models.LinkingToken{
		ID:               m.ID,
		Value:            m.Token,
		TabletFeedbackID: m.TabletFeedbackID,
		ExpiresAt:        m.ExpiresAt,
		Used:             m.Used,
		UsedAt:           m.UsedAt,
	}
}
