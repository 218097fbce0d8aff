package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/civicpulse/feedback-platform/pkg/common/logger"
	"github.com/civicpulse/feedback-platform/pkg/common/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrResponseNotFound = errors.New("survey response not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type feedbackModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;column:id"`
	Type            string         `gorm:"column:type;index"`
	TabletResponses datatypes.JSON `gorm:"column:tablet_responses"`
	QRResponses     datatypes.JSON `gorm:"column:qr_responses"`
	TokenID         *uuid.UUID     `gorm:"type:uuid;column:token_id"`
	Name            string         `gorm:"column:name"`
	Phone           string         `gorm:"column:phone"`
	Consent         *bool          `gorm:"column:consent"`
	Status          string         `gorm:"column:status"`
	CreatedAt       time.Time      `gorm:"column:created_at;index"`
}

func (feedbackModel) TableName() string { return "feedback" }

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&feedbackModel{})
}

func (r *Repository) Insert(ctx context.Context, resp models.SurveyResponse) error {
	record := feedbackModel{
		ID:        resp.ID,
		Type:      string(resp.Channel),
		TokenID:   resp.TokenID,
		Status:    resp.Status,
		CreatedAt: resp.CreatedAt,
	}

	if resp.TabletAnswers != nil {
		payload, err := json.Marshal(resp.TabletAnswers)
		if err != nil {
			return err
		}
		record.TabletResponses = payload
	}
	if resp.QRAnswers != nil {
		payload, err := json.Marshal(resp.QRAnswers)
		if err != nil {
			return err
		}
		record.QRResponses = payload
	}
	if p := resp.Participant; p != nil {
		record.Name = p.Name
		record.Phone = p.Phone
		consent := p.Consent
		record.Consent = &consent
	}

	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (models.SurveyResponse, error) {
	var record feedbackModel
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.SurveyResponse{}, ErrResponseNotFound
		}
		return models.SurveyResponse{}, err
	}
	return record.toDomain(), nil
}

// List returns matching responses newest first. Start is inclusive, End
// exclusive.
func (r *Repository) List(ctx context.Context, filter models.ResponseFilter) ([]models.SurveyResponse, error) {
	query := r.db.WithContext(ctx).Model(&feedbackModel{}).Order("created_at DESC")
	if filter.Channel != nil {
		query = query.Where("type = ?", string(*filter.Channel))
	}
	if filter.Start != nil {
		query = query.Where("created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("created_at < ?", *filter.End)
	}

	var records []feedbackModel
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	responses := make([]models.SurveyResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, record.toDomain())
	}
	return responses, nil
}

// toDomain tolerates malformed answer payloads: a row that cannot be decoded
// still lists and aggregates, contributing nothing to the tallies.
func (m feedbackModel) toDomain() models.SurveyResponse {
	resp := models.SurveyResponse{
		ID:        m.ID,
		Channel:   models.Channel(m.Type),
		TokenID:   m.TokenID,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}

	if len(m.TabletResponses) > 0 {
		var answers models.KioskAnswers
		if err := json.Unmarshal(m.TabletResponses, &answers); err != nil {
			logger.Log.WithError(err).WithField("feedback_id", m.ID).Warn("malformed tablet answer payload")
		} else {
			resp.TabletAnswers = &answers
		}
	}
	if len(m.QRResponses) > 0 {
		var answers models.MobileAnswers
		if err := json.Unmarshal(m.QRResponses, &answers); err != nil {
			logger.Log.WithError(err).WithField("feedback_id", m.ID).Warn("malformed mobile answer payload")
		} else {
			resp.QRAnswers = &answers
		}
	}
	if m.Name != "" || m.Phone != "" || m.Consent != nil {
		participant := models.Participant{Name: m.Name, Phone: m.Phone}
		if m.Consent != nil {
			participant.Consent = *m.Consent
		}
		resp.Participant = &participant
	}
	return resp
}
