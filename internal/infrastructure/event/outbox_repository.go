package event

import (
	"context"
	"errors"
	"time"

	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository stores outbox rows in the outbox_events table
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// WithTx binds the repository to a transaction, so rows are written with the
// state change that raised them.
func (r *GormOutboxRepository) WithTx(tx *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: tx}
}

func (r *GormOutboxRepository) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.OutboxEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.OutboxEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(rows).Error
}

// ClaimDue locks due rows with FOR UPDATE SKIP LOCKED and flips them to
// PROCESSING inside one transaction. Dialects without row locks run the
// same statements unlocked.
func (r *GormOutboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*shared.OutboxEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	var claimed []*shared.OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.OutboxEntryModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? OR (status = ? AND next_retry_at <= ?)",
				shared.OutboxStatusPending, shared.OutboxStatusFailed, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&rows).Error
		if err != nil || len(rows) == 0 {
			return err
		}

		ids := make([]uuid.UUID, 0, len(rows))
		for i := range rows {
			entry := rows[i].ToDomain()
			if entry.MarkProcessing() != nil {
				continue
			}
			entry.UpdatedAt = now
			claimed = append(claimed, entry)
			ids = append(ids, entry.ID)
		}
		return tx.Model(&models.OutboxEntryModel{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     shared.OutboxStatusProcessing,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ReleaseStale requeues rows whose claimer never reported back, such as a
// processor killed mid-batch. The interrupted attempt is not counted.
func (r *GormOutboxRepository) ReleaseStale(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("status = ? AND updated_at < ?", shared.OutboxStatusProcessing, before).
		Updates(map[string]any{
			"status":     shared.OutboxStatusPending,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// Update writes back an entry after a delivery attempt or a requeue
func (r *GormOutboxRepository) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	entry.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(models.OutboxEntryModelFromDomain(entry)).Error
}

func (r *GormOutboxRepository) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	var row models.OutboxEntryModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

func (r *GormOutboxRepository) List(ctx context.Context, status shared.OutboxStatus, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OutboxEntryModel{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*shared.OutboxEntry{}, 0, nil
	}

	var rows []models.OutboxEntryModel
	err := query.
		Order("updated_at DESC").
		Order("id").
		Offset((max(page, 1) - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	entries := make([]*shared.OutboxEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, total, nil
}

// RequeueDead applies OutboxEntry.Requeue to every dead row in one statement
func (r *GormOutboxRepository) RequeueDead(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Where("status = ?", shared.OutboxStatusDead).
		Updates(map[string]any{
			"status":        shared.OutboxStatusPending,
			"retry_count":   0,
			"last_error":    "",
			"next_retry_at": nil,
			"updated_at":    time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *GormOutboxRepository) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", shared.OutboxStatusSent, before).
		Delete(&models.OutboxEntryModel{})
	return result.RowsAffected, result.Error
}

func (r *GormOutboxRepository) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	var rows []struct {
		Status shared.OutboxStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEntryModel{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[shared.OutboxStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

var _ shared.OutboxRepository = (*GormOutboxRepository)(nil)
