package repository

import (
	"context"
	"time"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// ユーザー自身の注文一覧の絞り込み
type UserOrderListFilter struct {
	Page   int
	Limit  int
	Status string
}

// 管理者用の注文一覧の絞り込み
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// ステータス別の件数
type OrderStatusCount struct {
	Status model.OrderStatus
	Count  int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)

	//ステータス遷移の判定に使う行はロックして読む
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)

	FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error)

	Create(ctx context.Context, order model.Order) (int64, error)

	//遷移で変わるフィールド（status/支払い/配送/キャンセル情報）をまとめて保存
	Update(ctx context.Context, order model.Order) error

	ListByUserID(ctx context.Context, userID int64, f UserOrderListFilter) ([]model.Order, int64, error)

	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)

	//統計用：ステータス別件数（全期間）
	CountByStatus(ctx context.Context) ([]OrderStatusCount, error)

	//統計用：期間内のPAID注文の売上合計と件数
	SumRevenue(ctx context.Context, from time.Time, to time.Time) (decimal.Decimal, int64, error)

	//統計用：期間内の全注文件数（支払い状態は問わない）
	CountInRange(ctx context.Context, from time.Time, to time.Time) (int64, error)
}
