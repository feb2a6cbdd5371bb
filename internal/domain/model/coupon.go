package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// クーポン。割引率（%）で持つ
type Coupon struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"discount_percent"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 使えるクーポンか
func (c *Coupon) IsUsable(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return false
	}
	return true
}
