package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the cart snapshot store. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&CartSnapshotRecord{})
}

// CartSnapshotRecord mirrors the Postgres snapshot adapter: one row per
// user, the item list serialized as JSON, cake names denormalized into an
// array column for support queries.
type CartSnapshotRecord struct {
	UserID       string         `gorm:"primaryKey;column:user_id;type:varchar(64)"`
	BakeryID     string         `gorm:"column:bakery_id;type:varchar(64);index"`
	Items        []byte         `gorm:"column:items;type:jsonb"`
	CakeNames    pq.StringArray `gorm:"column:cake_names;type:text[]"`
	CheckoutMeta []byte         `gorm:"column:checkout_meta;type:jsonb"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;index"`
}

func (CartSnapshotRecord) TableName() string { return "cart_snapshots" }
