package behavior

import (
	"context"
	"time"

	"github.com/crow2678/Digital-Twin-sub001/internal/infrastructure/persistence/postgres/connection"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the storage operations for behavioral events.
type Repository interface {
	Insert(ctx context.Context, event *BehavioralEvent) (bool, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int64, error)
	CountsByType(ctx context.Context, userID string) ([]TypeCount, error)
	CountsByDomain(ctx context.Context, userID string) ([]DomainCount, error)
	LastActivity(ctx context.Context, userID string) (time.Time, error)
}

type repository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository creates a new repository for behavioral events.
func NewRepository(db *connection.Database, logger *logrus.Logger) Repository {
	return &repository{
		db:     db.DB,
		logger: logger,
	}
}

// Insert stores one event. Redelivery of an already-stored event_id is
// a no-op; the bool reports whether a row was actually written.
func (r *repository) Insert(ctx context.Context, event *BehavioralEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("event_id", event.EventID).Error("Failed to insert behavioral event")
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BehavioralEvent{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repository) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&BehavioralEvent{}).
		Where("user_id = ? AND captured_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *repository) CountsByType(ctx context.Context, userID string) ([]TypeCount, error) {
	var rows []TypeCount
	err := r.db.WithContext(ctx).
		Model(&BehavioralEvent{}).
		Select("event_type, count(*) as count").
		Where("user_id = ?", userID).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to count events by type")
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountsByDomain(ctx context.Context, userID string) ([]DomainCount, error) {
	var rows []DomainCount
	err := r.db.WithContext(ctx).
		Model(&BehavioralEvent{}).
		Select("domain, count(*) as count").
		Where("user_id = ?", userID).
		Group("domain").
		Scan(&rows).Error
	if err != nil {
		r.logger.WithError(err).Error("Failed to count events by domain")
		return nil, err
	}
	return rows, nil
}

func (r *repository) LastActivity(ctx context.Context, userID string) (time.Time, error) {
	var last time.Time
	err := r.db.WithContext(ctx).
		Model(&BehavioralEvent{}).
		Select("coalesce(max(captured_at), to_timestamp(0))").
		Where("user_id = ?", userID).
		Scan(&last).Error
	return last, err
}
