package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or alters the trades table and its listing index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&TradeRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Listing walks trades in creation order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trades_timestamp_id
		ON trades (timestamp, trade_id)
	`).Error; err != nil {
		return fmt.Errorf("failed to create trades listing index: %w", err)
	}

	return nil
}
