package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int64           `json:"quantity"`
	Discount    decimal.Decimal `json:"discount_amount"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type OrderOutput struct {
	ID                 int64                 `json:"id"`
	OrderNumber        string                `json:"order_number"`
	UserID             int64                 `json:"user_id"`
	Status             model.OrderStatus     `json:"status"`
	PaymentMethod      model.PaymentMethod   `json:"payment_method"`
	PaymentStatus      model.PaymentStatus   `json:"payment_status"`
	PaymentDate        *time.Time            `json:"payment_date"`
	Subtotal           decimal.Decimal       `json:"subtotal"`
	DiscountAmount     decimal.Decimal       `json:"discount_amount"`
	TaxAmount          decimal.Decimal       `json:"tax_amount"`
	ShippingFee        decimal.Decimal       `json:"shipping_fee"`
	TotalAmount        decimal.Decimal       `json:"total_amount"`
	ShippingAddress    model.ShippingAddress `json:"shipping_address"`
	ShippingMethod     model.ShippingMethod  `json:"shipping_method"`
	TrackingNumber     string                `json:"tracking_number"`
	ShippedDate        *time.Time            `json:"shipped_date"`
	DeliveredDate      *time.Time            `json:"delivered_date"`
	Notes              string                `json:"notes"`
	CouponCode         string                `json:"coupon_code"`
	CancelledDate      *time.Time            `json:"cancelled_date"`
	CancellationReason string                `json:"cancellation_reason"`
	CreatedAt          time.Time             `json:"created_at"`
	Items              []OrderItemOutput     `json:"items"`
}

// ページング付き一覧
type OrderListOutput struct {
	Orders []OrderOutput `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Limit  int           `json:"limit"`
}

// 期間統計
type OrderStatisticsOutput struct {
	From              time.Time        `json:"from"`
	To                time.Time        `json:"to"`
	TotalOrders       int64            `json:"total_orders"`
	TotalRevenue      decimal.Decimal  `json:"total_revenue"`
	AverageOrderValue decimal.Decimal  `json:"average_order_value"`
	OrdersByStatus    map[string]int64 `json:"orders_by_status"`
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductNameSnapshot,
			UnitPrice:   it.UnitPriceSnapshot,
			Quantity:    it.Quantity,
			Discount:    it.DiscountAmount,
			TotalPrice:  it.TotalPrice,
		})
	}

	return OrderOutput{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		UserID:             o.UserID,
		Status:             o.Status,
		PaymentMethod:      o.PaymentMethod,
		PaymentStatus:      o.PaymentStatus,
		PaymentDate:        o.PaymentDate,
		Subtotal:           o.Subtotal,
		DiscountAmount:     o.DiscountAmount,
		TaxAmount:          o.TaxAmount,
		ShippingFee:        o.ShippingFee,
		TotalAmount:        o.TotalAmount,
		ShippingAddress:    o.ShippingAddress,
		ShippingMethod:     o.ShippingMethod,
		TrackingNumber:     o.TrackingNumber,
		ShippedDate:        o.ShippedDate,
		DeliveredDate:      o.DeliveredDate,
		Notes:              o.Notes,
		CouponCode:         o.CouponCode,
		CancelledDate:      o.CancelledDate,
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
		Items:              outItems,
	}
}

// 注文の読み取り側。注文を変更することはない
type OrderQueryUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewOrderQueryUsecase(tx repo.TransactionManager, clock Clock) *OrderQueryUsecase {
	return &OrderQueryUsecase{tx: tx, clock: clock}
}

func (u *OrderQueryUsecase) GetOrderByID(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderQueryUsecase) GetOrderByNumber(ctx context.Context, orderNumber string) (OrderOutput, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order number")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByOrderNumber(ctx, orderNumber)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// ユーザー自身の注文一覧（status絞り込み可）
func (u *OrderQueryUsecase) ListUserOrders(ctx context.Context, userID int64, f repo.UserOrderListFilter) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListByUserID(ctx, userID, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Orders: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 管理者用の全注文一覧（status・期間絞り込み可）
func (u *OrderQueryUsecase) ListAllOrders(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out OrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}

		out = OrderListOutput{Orders: outs, Total: total, Page: f.Page, Limit: f.Limit}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 期間統計。売上はPAIDの注文だけ。期間未指定は直近1ヶ月
func (u *OrderQueryUsecase) GetStatistics(ctx context.Context, from *time.Time, to *time.Time) (OrderStatisticsOutput, error) {
	now := u.clock.Now()

	start := now.AddDate(0, -1, 0)
	if from != nil {
		start = *from
	}
	end := now
	if to != nil {
		end = *to
	}
	if end.Before(start) {
		return OrderStatisticsOutput{}, NewHTTPError(http.StatusBadRequest, "invalid date range")
	}

	var out OrderStatisticsOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		revenue, _, err := r.Orders().SumRevenue(ctx, start, end)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文件数はPAID以外も含めた期間内の全件
		total, err := r.Orders().CountInRange(ctx, start, end)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		counts, err := r.Orders().CountByStatus(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		byStatus := make(map[string]int64, len(counts))
		for _, c := range counts {
			byStatus[string(c.Status)] = c.Count
		}

		//平均も全件数で割る（売上側だけPAIDで絞る）
		avg := decimal.Zero
		if total > 0 {
			avg = revenue.Div(decimal.NewFromInt(total)).Round(2)
		}

		out = OrderStatisticsOutput{
			From:              start,
			To:                end,
			TotalOrders:       total,
			TotalRevenue:      revenue,
			AverageOrderValue: avg,
			OrdersByStatus:    byStatus,
		}
		return nil
	})

	if err != nil {
		return OrderStatisticsOutput{}, err
	}
	return out, nil
}
