package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
)

type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentMethodCreditCard     PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard      PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet        PaymentMethod = "E_WALLET"
	PaymentMethodPaypal         PaymentMethod = "PAYPAL"
)

type ShippingMethod string

const (
	ShippingMethodStandard  ShippingMethod = "STANDARD"
	ShippingMethodExpress   ShippingMethod = "EXPRESS"
	ShippingMethodOvernight ShippingMethod = "OVERNIGHT"
	ShippingMethodPickup    ShippingMethod = "PICKUP"
)

// 配送先住所（注文に埋め込む値。住所テーブルは持たない）
type ShippingAddress struct {
	RecipientName  string `gorm:"column:recipient_name;type:varchar(100)" json:"recipient_name"`
	RecipientPhone string `gorm:"column:recipient_phone;type:varchar(20)" json:"recipient_phone"`
	StreetAddress  string `gorm:"column:street_address;type:varchar(255)" json:"street_address"`
	Ward           string `gorm:"column:ward;type:varchar(100)" json:"ward"`
	District       string `gorm:"column:district;type:varchar(100)" json:"district"`
	City           string `gorm:"column:city;type:varchar(100)" json:"city"`
	Province       string `gorm:"column:province;type:varchar(100)" json:"province"`
	PostalCode     string `gorm:"column:postal_code;type:varchar(10)" json:"postal_code"`
	Country        string `gorm:"column:country;type:varchar(100)" json:"country"`
}

// 注文。total = subtotal + tax + shipping - discount を常に満たす
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	// 人が読める注文番号（ORD-<millis>-<4桁>）
	OrderNumber string `gorm:"type:varchar(30);not null;uniqueIndex" json:"order_number"`

	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	PaymentDate   *time.Time    `json:"payment_date"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shipping_fee"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	ShippingAddress ShippingAddress `gorm:"embedded" json:"shipping_address"`
	ShippingMethod  ShippingMethod  `gorm:"type:varchar(20)" json:"shipping_method"`
	TrackingNumber  string          `gorm:"type:varchar(100)" json:"tracking_number"`

	ShippedDate   *time.Time `json:"shipped_date"`
	DeliveredDate *time.Time `json:"delivered_date"`

	Notes      string `gorm:"type:varchar(500)" json:"notes"`
	CouponCode string `gorm:"type:varchar(50)" json:"coupon_code"`

	CancelledDate      *time.Time `json:"cancelled_date"`
	CancellationReason string     `gorm:"type:varchar(500)" json:"cancellation_reason"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// totalを再計算する。金額を触ったら保存前に必ず呼ぶ
func (o *Order) CalculateTotalAmount() {
	o.TotalAmount = o.Subtotal.
		Add(o.TaxAmount).
		Add(o.ShippingFee).
		Sub(o.DiscountAmount)
}
