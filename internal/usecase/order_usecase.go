package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notification"
	"app/internal/pricing"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 注文ステータスの遷移表。ここに無い遷移は全部拒否
// SHIPPED以降のキャンセルは許可しない（出荷前だけキャンセル可能）
var validStatusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed:  {model.OrderStatusProcessing, model.OrderStatusCancelled},
	model.OrderStatusProcessing: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:    {model.OrderStatusDelivered},
	model.OrderStatusDelivered:  {model.OrderStatusRefunded},
	model.OrderStatusCancelled:  {},
	model.OrderStatusRefunded:   {},
}

// キャンセルできるのは出荷前だけ
var cancellableStatuses = map[model.OrderStatus]struct{}{
	model.OrderStatusPending:    {},
	model.OrderStatusConfirmed:  {},
	model.OrderStatusProcessing: {},
}

func validateStatusTransition(from, to model.OrderStatus) error {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &InvalidStatusTransitionError{From: from, To: to}
}

func isOrderCancellable(status model.OrderStatus) bool {
	_, ok := cancellableStatuses[status]
	return ok
}

// 注文番号（ORD-<millis>-<4桁大文字>）
func generateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}

// 注文のライフサイクル（作成・遷移・キャンセル・支払い・配送）を司る
type OrderUsecase struct {
	tx       repo.TransactionManager
	calc     *pricing.Calculator
	coupons  pricing.CouponResolver
	notifier notification.Notifier
	logger   *zap.Logger
	clock    Clock
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	calc *pricing.Calculator,
	coupons pricing.CouponResolver,
	notifier notification.Notifier,
	logger *zap.Logger,
	clock Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:       tx,
		calc:     calc,
		coupons:  coupons,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
	}
}

type CreateOrderItemInput struct {
	ProductID int64
	Quantity  int64
}

type CreateOrderInput struct {
	Items           []CreateOrderItemInput
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	ShippingMethod  string
	CouponCode      string
	Notes           string
}

type UpdateOrderStatusInput struct {
	Status             string
	TrackingNumber     string
	CancellationReason string
}

// 注文作成。在庫確保は全件同一トランザクション内で行い、
// 途中で足りない品があれば全体をロールバックする（部分確保は残さない）
func (u *OrderUsecase) CreateOrder(ctx context.Context, userID int64, in CreateOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//副作用の前に入力形を検証する
	items := make([]validator.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, validator.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if ferrs := validator.ValidateOrderCreate(items, in.ShippingAddress, in.PaymentMethod, in.ShippingMethod, in.Notes); len(ferrs) > 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, validator.JoinFieldErrors(ferrs))
	}

	var out OrderOutput
	var recipient *model.User

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//顧客の解決
		user, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrUserNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()

		//明細を組み立てながら在庫を確保する
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		for _, req := range in.Items {
			p, err := r.Products().FindByID(ctx, req.ProductID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, fmt.Sprintf("product not found: %d", req.ProductID))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if p.Status == model.ProductStatusInactive {
				return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("product not available: %s", p.Name))
			}

			//条件付き減算。足りなければここでtxごと失敗させる
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, req.ProductID, req.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				available, err := r.Inventory().GetStock(ctx, req.ProductID)
				if err != nil {
					available = 0
				}
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   req.Quantity,
					Available:   available,
				}
			}

			//単価は商品マスタから読む（クライアント申告は信用しない）
			item := model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            req.Quantity,
				DiscountAmount:      decimal.Zero,
				CreatedAt:           now,
			}
			item.CalculateTotalPrice()
			orderItems = append(orderItems, item)
		}

		//金額計算
		subtotal := u.calc.Subtotal(orderItems)
		tax := u.calc.Tax(subtotal)
		shipping := u.calc.ShippingFee(subtotal, model.ShippingMethod(in.ShippingMethod))

		discount := decimal.Zero
		if in.CouponCode != "" {
			discount, err = u.coupons.Resolve(ctx, in.CouponCode, subtotal)
			if err == pricing.ErrInvalidCoupon {
				return NewHTTPError(http.StatusBadRequest, "invalid coupon")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		total, err := u.calc.Total(subtotal, tax, shipping, discount)
		if err == pricing.ErrDiscountExceedsTotal {
			return NewHTTPError(http.StatusBadRequest, "discount exceeds order total")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "pricing error")
		}

		order := model.Order{
			UserID:          userID,
			OrderNumber:     generateOrderNumber(now),
			Status:          model.OrderStatusPending,
			PaymentMethod:   model.PaymentMethod(in.PaymentMethod),
			PaymentStatus:   model.PaymentStatusUnpaid,
			Subtotal:        subtotal,
			DiscountAmount:  discount,
			TaxAmount:       tax,
			ShippingFee:     shipping,
			TotalAmount:     total,
			ShippingAddress: in.ShippingAddress,
			ShippingMethod:  model.ShippingMethod(in.ShippingMethod),
			Notes:           in.Notes,
			CouponCode:      in.CouponCode,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		recipient = user
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//通知はcommit後にベストエフォートで出す
	u.notifier.Notify(ctx, notification.Message{
		RecipientEmail: recipient.Email,
		TemplateKey:    notification.TemplateOrderConfirmation,
		Variables: map[string]string{
			"orderNumber":  out.OrderNumber,
			"customerName": recipient.FullName,
			"totalAmount":  out.TotalAmount.StringFixed(2),
		},
	})

	u.logger.Info("order created",
		zap.String("order_number", out.OrderNumber),
		zap.Int64("user_id", userID),
	)

	return out, nil
}

// ステータス更新。遷移表に無い組み合わせは拒否する
// CANCELLEDへの遷移は明細分の在庫を同一トランザクションで戻す
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorUserID int64, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusProcessing,
		model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled,
		model.OrderStatusRefunded:
		// OK
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput
	var recipient *model.User

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//遷移判定はロックした行のstatusで行う
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := validateStatusTransition(o.Status, newStatus); err != nil {
			return err
		}

		before := o.Status
		now := u.clock.Now()
		o.Status = newStatus

		switch newStatus {
		case model.OrderStatusShipped:
			o.ShippedDate = &now
			if in.TrackingNumber != "" {
				o.TrackingNumber = in.TrackingNumber
			}
		case model.OrderStatusDelivered:
			o.DeliveredDate = &now
		case model.OrderStatusCancelled:
			o.CancelledDate = &now
			o.CancellationReason = in.CancellationReason

			//明細分の在庫を戻す
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().Update(ctx, o); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//操作ログ
		if actorUserID > 0 {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionUpdateOrderStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   `{"status":"` + string(before) + `"}`,
				AfterJSON:    `{"status":"` + string(newStatus) + `"}`,
				CreatedAt:    now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		user, err := r.Users().FindByID(ctx, o.UserID)
		if err == nil {
			recipient = user
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

	if recipient != nil {
		u.notifier.Notify(ctx, notification.Message{
			RecipientEmail: recipient.Email,
			TemplateKey:    notification.TemplateOrderStatusUpdate,
			Variables: map[string]string{
				"orderNumber":    out.OrderNumber,
				"customerName":   recipient.FullName,
				"status":         string(out.Status),
				"trackingNumber": out.TrackingNumber,
			},
		})
	}

	u.logger.Info("order status updated",
		zap.String("order_number", out.OrderNumber),
		zap.String("status", string(out.Status)),
	)

	return out, nil
}

// キャンセル。遷移表より先にキャンセル可能か（出荷前か）を見て
// 分かりやすい業務エラーを返す
func (u *OrderUsecase) CancelOrder(ctx context.Context, actorUserID int64, orderID int64, reason string) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var current model.OrderStatus
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		current = o.Status
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if !isOrderCancellable(current) {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("order cannot be cancelled in current status: %s", current))
	}

	return u.UpdateStatus(ctx, actorUserID, orderID, UpdateOrderStatusInput{
		Status:             string(model.OrderStatusCancelled),
		CancellationReason: reason,
	})
}

// 支払いステータス更新。PAIDになったら支払日を刻み、
// PENDINGの注文だけCONFIRMEDへ自動で進める（支払いと受注の連動仕様）
func (u *OrderUsecase) UpdatePaymentStatus(ctx context.Context, actorUserID int64, orderID int64, status string) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.PaymentStatus(strings.TrimSpace(status))
	switch newStatus {
	case model.PaymentStatusUnpaid, model.PaymentStatusPaid,
		model.PaymentStatusRefunded, model.PaymentStatusFailed:
		// OK
	default:
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment status")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		before := o.PaymentStatus
		now := u.clock.Now()
		o.PaymentStatus = newStatus

		if newStatus == model.PaymentStatusPaid {
			o.PaymentDate = &now
			if o.Status == model.OrderStatusPending {
				o.Status = model.OrderStatusConfirmed
			}
		}

		if err := r.Orders().Update(ctx, o); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if actorUserID > 0 {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionUpdatePaymentStatus,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				BeforeJSON:   `{"payment_status":"` + string(before) + `"}`,
				AfterJSON:    `{"payment_status":"` + string(newStatus) + `"}`,
				CreatedAt:    now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
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

	u.logger.Info("order payment status updated",
		zap.String("order_number", out.OrderNumber),
		zap.String("payment_status", string(out.PaymentStatus)),
	)

	return out, nil
}

// 追跡番号の登録。PROCESSING中ならSHIPPEDへ自動で進めて出荷日を刻む
func (u *OrderUsecase) UpdateShippingInfo(ctx context.Context, actorUserID int64, orderID int64, trackingNumber string) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid tracking number")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()
		o.TrackingNumber = trackingNumber

		if o.Status == model.OrderStatusProcessing {
			o.Status = model.OrderStatusShipped
			o.ShippedDate = &now
		}

		if err := r.Orders().Update(ctx, o); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if actorUserID > 0 {
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionUpdateShippingInfo,
				ResourceType: model.AuditResourceOrder,
				ResourceID:   orderID,
				AfterJSON:    `{"tracking_number":"` + trackingNumber + `"}`,
				CreatedAt:    now,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
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

	u.logger.Info("order tracking number updated",
		zap.String("order_number", out.OrderNumber),
		zap.String("tracking_number", trackingNumber),
	)

	return out, nil
}

// 所有チェック。見つからない注文はfalse
func (u *OrderUsecase) IsOrderOwner(ctx context.Context, orderID int64, userID int64) (bool, error) {
	var owned bool
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			owned = false
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		owned = o.UserID == userID
		return nil
	})
	return owned, err
}

// 所有＋キャンセル可能かの複合チェック
func (u *OrderUsecase) CanCancelOrder(ctx context.Context, orderID int64, userID int64) (bool, error) {
	var ok bool
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			ok = false
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		ok = o.UserID == userID && isOrderCancellable(o.Status)
		return nil
	})
	return ok, err
}
