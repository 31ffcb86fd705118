package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/opsdash/backend/internal/domain/purchasing"
)

// GormSyncStateRepository implements SyncStateRepository using GORM
type GormSyncStateRepository struct {
	db *gorm.DB
}

// NewGormSyncStateRepository creates a new GormSyncStateRepository
func NewGormSyncStateRepository(db *gorm.DB) *GormSyncStateRepository {
	return &GormSyncStateRepository{db: db}
}

// Get returns the stored watermark for a sync key, or nil when that sync
// has never run. A zero value stored by an older schema also counts as
// never run.
func (r *GormSyncStateRepository) Get(ctx context.Context, key string) (*time.Time, error) {
	var state purchasing.SyncState
	if err := r.db.WithContext(ctx).First(&state, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if state.Value.IsZero() || state.Value.Unix() == 0 {
		return nil, nil
	}
	value := state.Value
	return &value, nil
}

// Set upserts the watermark for a sync key
func (r *GormSyncStateRepository) Set(ctx context.Context, key string, value time.Time) error {
	state := purchasing.SyncState{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&state).Error
}

// Ensure GormSyncStateRepository implements SyncStateRepository
var _ purchasing.SyncStateRepository = (*GormSyncStateRepository)(nil)
