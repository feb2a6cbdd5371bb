package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細
// 注文時点の単価を必ずスナップショットで保存（後の値上げに影響されない）
type OrderItem struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64           `gorm:"not null;index" json:"order_id"`
	ProductID           int64           `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price_snapshot"`
	Quantity            int64           `gorm:"not null" json:"quantity"`
	DiscountAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_amount"`
	TotalPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	CreatedAt           time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 明細合計 = 単価 × 数量 - 明細割引
func (i *OrderItem) CalculateTotalPrice() {
	i.TotalPrice = i.UnitPriceSnapshot.
		Mul(decimal.NewFromInt(i.Quantity)).
		Sub(i.DiscountAmount)
}
