package pricing_test

import (
	"testing"

	"app/internal/domain/model"
	"app/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(unitPrice int64, qty int64) model.OrderItem {
	it := model.OrderItem{
		UnitPriceSnapshot: decimal.NewFromInt(unitPrice),
		Quantity:          qty,
		DiscountAmount:    decimal.Zero,
	}
	it.CalculateTotalPrice()
	return it
}

func TestCalculator_Subtotal(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	got := c.Subtotal([]model.OrderItem{
		item(150000, 2),
		item(100000, 1),
	})
	assert.True(t, got.Equal(decimal.NewFromInt(400000)), "subtotal=%s", got)

	assert.True(t, c.Subtotal(nil).IsZero())
}

func TestCalculator_Subtotal_WithItemDiscount(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	it := model.OrderItem{
		UnitPriceSnapshot: decimal.NewFromInt(100000),
		Quantity:          2,
		DiscountAmount:    decimal.NewFromInt(15000),
	}
	it.CalculateTotalPrice()

	got := c.Subtotal([]model.OrderItem{it})
	assert.True(t, got.Equal(decimal.NewFromInt(185000)), "subtotal=%s", got)
}

func TestCalculator_ShippingFee(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	below := decimal.NewFromInt(499999)
	atThreshold := decimal.NewFromInt(500000)

	// 閾値未満：STANDARD系30000、EXPRESSだけ50000
	assert.True(t, c.ShippingFee(below, model.ShippingMethodStandard).Equal(decimal.NewFromInt(30000)))
	assert.True(t, c.ShippingFee(below, model.ShippingMethodOvernight).Equal(decimal.NewFromInt(30000)))
	assert.True(t, c.ShippingFee(below, model.ShippingMethodPickup).Equal(decimal.NewFromInt(30000)))
	assert.True(t, c.ShippingFee(below, model.ShippingMethodExpress).Equal(decimal.NewFromInt(50000)))

	// 閾値ちょうどから無料
	assert.True(t, c.ShippingFee(atThreshold, model.ShippingMethodStandard).IsZero())
	assert.True(t, c.ShippingFee(atThreshold, model.ShippingMethodExpress).IsZero())
}

func TestCalculator_Tax_RoundsToTwoDigits(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	// 100005 × 0.1 = 10000.5 → そのまま2桁
	got := c.Tax(decimal.NewFromInt(100005))
	assert.Equal(t, "10000.50", got.StringFixed(2))

	// 333.33 × 0.1 = 33.333 → 33.33
	got = c.Tax(decimal.RequireFromString("333.33"))
	assert.Equal(t, "33.33", got.StringFixed(2))
}

func TestCalculator_Total(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	total, err := c.Total(
		decimal.NewFromInt(400000),
		decimal.NewFromInt(40000),
		decimal.NewFromInt(30000),
		decimal.NewFromInt(20000),
	)
	assert.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(450000)), "total=%s", total)
}

func TestCalculator_Total_DiscountExceedsGross(t *testing.T) {
	c := pricing.NewCalculator(pricing.DefaultConfig())

	// 割引が小計+税+送料を超えたら負の合計を作らず拒否
	_, err := c.Total(
		decimal.NewFromInt(100000),
		decimal.NewFromInt(10000),
		decimal.NewFromInt(30000),
		decimal.NewFromInt(140001),
	)
	assert.ErrorIs(t, err, pricing.ErrDiscountExceedsTotal)

	// ちょうど同額はOK（合計0）
	total, err := c.Total(
		decimal.NewFromInt(100000),
		decimal.NewFromInt(10000),
		decimal.NewFromInt(30000),
		decimal.NewFromInt(140000),
	)
	assert.NoError(t, err)
	assert.True(t, total.IsZero())
}
