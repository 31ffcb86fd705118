package purchasing

import "time"

// Watermark keys, one per synchronization type. The stored value is the
// timestamp below which external records are assumed already reconciled.
const (
	SyncKeyOrders     = "last_order_sync_at"
	SyncKeyReceptions = "last_reception_sync_at"
	SyncKeySuppliers  = "last_supplier_sync_at"
)

// SyncState is a key-value watermark row. A zero time means the sync has
// never run; repositories surface that as nil.
type SyncState struct {
	Key       string    `gorm:"type:varchar(50);primaryKey"`
	Value     time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SyncState) TableName() string {
	return "sync_states"
}
