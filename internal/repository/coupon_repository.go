package repository

import (
	"context"

	"app/internal/domain/model"
)

// クーポンの取得だけを約束（発行・管理は別の関心）
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
}
