package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/repository"

	"github.com/shopspring/decimal"
)

// クーポンが存在しない・期限切れ・無効
var ErrInvalidCoupon = errors.New("invalid coupon")

// 現在の時間
type Clock interface {
	Now() time.Time
}

// クーポンストアを引く標準のResolver
// 割引額 = 小計 × 割引率（2桁丸め）
type StoreCouponResolver struct {
	coupons repository.CouponRepository
	clock   Clock
}

func NewStoreCouponResolver(coupons repository.CouponRepository, clock Clock) *StoreCouponResolver {
	return &StoreCouponResolver{coupons: coupons, clock: clock}
}

func (r *StoreCouponResolver) Resolve(ctx context.Context, code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return decimal.Zero, nil
	}

	c, err := r.coupons.FindByCode(ctx, code)
	if err == repository.ErrNotFound {
		return decimal.Zero, ErrInvalidCoupon
	}
	if err != nil {
		return decimal.Zero, err
	}

	if !c.IsUsable(r.clock.Now()) {
		return decimal.Zero, ErrInvalidCoupon
	}

	return subtotal.Mul(c.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2), nil
}
