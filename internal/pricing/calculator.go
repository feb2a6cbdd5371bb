package pricing

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 割引が合計を超えた（クランプせず拒否する）
var ErrDiscountExceedsTotal = errors.New("discount exceeds order total")

// 金額計算の設定。注入する値で持ち、グローバルには置かない
type Config struct {
	TaxRate               decimal.Decimal
	StandardShippingFee   decimal.Decimal
	ExpressShippingFee    decimal.Decimal
	FreeShippingThreshold decimal.Decimal
}

// 運用デフォルト（税率10%、送料30000/50000、閾値500000）
func DefaultConfig() Config {
	return Config{
		TaxRate:               decimal.NewFromFloat(0.1),
		StandardShippingFee:   decimal.NewFromInt(30000),
		ExpressShippingFee:    decimal.NewFromInt(50000),
		FreeShippingThreshold: decimal.NewFromInt(500000),
	}
}

// クーポンを割引額に解決する約束（差し替え可能な戦略）
type CouponResolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error)
}

// 注文金額の計算だけを行う。副作用なし
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// 小計 = Σ(単価 × 数量 - 明細割引)
// 単価は注文時点のスナップショット（クライアントの申告は使わない）
func (c *Calculator) Subtotal(items []model.OrderItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	return subtotal
}

// 送料。閾値以上は無料、それ以外はEXPRESSだけ割増
func (c *Calculator) ShippingFee(subtotal decimal.Decimal, method model.ShippingMethod) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.cfg.FreeShippingThreshold) {
		return decimal.Zero
	}
	if method == model.ShippingMethodExpress {
		return c.cfg.ExpressShippingFee
	}
	return c.cfg.StandardShippingFee
}

// 税額 = 小計 × 税率（2桁丸め）
func (c *Calculator) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(c.cfg.TaxRate).Round(2)
}

// 合計 = 小計 + 税 + 送料 - 割引
// 割引が上回る組み合わせは負の合計を黙って作らず拒否する
func (c *Calculator) Total(subtotal, tax, shipping, discount decimal.Decimal) (decimal.Decimal, error) {
	gross := subtotal.Add(tax).Add(shipping)
	if discount.GreaterThan(gross) {
		return decimal.Zero, ErrDiscountExceedsTotal
	}
	return gross.Sub(discount), nil
}
