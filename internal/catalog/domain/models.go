// Package domain contains persistence models for catalog items.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Item is a metered catalog position billed by quantity.
type Item struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	UnitPrice int64        `gorm:"not null" json:"unit_price"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Item) TableName() string { return "items" }
