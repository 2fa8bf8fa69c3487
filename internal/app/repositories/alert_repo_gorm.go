package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/faeln1/alerta-roja/internal/domain/alert"
	"github.com/faeln1/alerta-roja/internal/domain/community"
	"gorm.io/gorm"
)

// alertRecord is the persisted form of an alert.Dispatch.
type alertRecord struct {
	ID         string    `gorm:"primaryKey;type:text"`
	Community  string    `gorm:"index:idx_alerts_community_received,priority:1;not null"`
	ReceivedAt time.Time `gorm:"index:idx_alerts_community_received,priority:2;not null"`
	UserID     string    `gorm:"not null;default:''"`
	Tipo       string    `gorm:"not null"`
	Direccion  string    `gorm:"not null;default:''"`
	MapLink    string    `gorm:"not null;default:''"`
	Recipients int       `gorm:"not null;default:0"`
	Payload    string    `gorm:"type:jsonb;not null"`
}

func (alertRecord) TableName() string { return "alerts" }

type gormAlertRepo struct {
	db *gorm.DB
}

// NewGormAlertRepo builds the alert history on a gorm handle and migrates its table.
func NewGormAlertRepo(db *gorm.DB) (AlertRepository, error) {
	if err := db.AutoMigrate(&alertRecord{}); err != nil {
		return nil, fmt.Errorf("migrate alerts: %w", err)
	}
	return &gormAlertRepo{db: db}, nil
}

func (r *gormAlertRepo) Record(ctx context.Context, d *alert.Dispatch) error {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return err
	}
	rec := alertRecord{
		ID:         d.ID,
		Community:  community.NormalizeName(d.Payload.Comunidad),
		ReceivedAt: d.ReceivedAt.UTC(),
		UserID:     d.Payload.UserTelegram.ID,
		Tipo:       d.Payload.Tipo,
		Direccion:  d.Payload.Direccion,
		MapLink:    d.MapLink,
		Recipients: d.Recipients,
		Payload:    string(payload),
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *gormAlertRepo) ListByCommunity(ctx context.Context, name string, limit int) ([]*alert.Dispatch, error) {
	if limit <= 0 {
		limit = defaultAlertListLimit
	}
	var recs []alertRecord
	err := r.db.WithContext(ctx).
		Where("community = ?", community.NormalizeName(name)).
		Order("received_at DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]*alert.Dispatch, 0, len(recs))
	for _, rec := range recs {
		d := &alert.Dispatch{ID: rec.ID, ReceivedAt: rec.ReceivedAt, MapLink: rec.MapLink, Recipients: rec.Recipients}
		if err := json.Unmarshal([]byte(rec.Payload), &d.Payload); err != nil {
			return nil, fmt.Errorf("decode alert %s: %w", rec.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}
