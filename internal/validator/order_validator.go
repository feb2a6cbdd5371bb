package validator

import (
	"fmt"
	"strings"

	"app/internal/domain/model"
)

// フィールド単位の検証エラー
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// まとめてメッセージ化する（エラー文やログ用）
func JoinFieldErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// 注文作成の明細入力
type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

var validPaymentMethods = map[string]struct{}{
	string(model.PaymentMethodCashOnDelivery): {},
	string(model.PaymentMethodCreditCard):     {},
	string(model.PaymentMethodDebitCard):      {},
	string(model.PaymentMethodBankTransfer):   {},
	string(model.PaymentMethodEWallet):        {},
	string(model.PaymentMethodPaypal):         {},
}

var validShippingMethods = map[string]struct{}{
	string(model.ShippingMethodStandard):  {},
	string(model.ShippingMethodExpress):   {},
	string(model.ShippingMethodOvernight): {},
	string(model.ShippingMethodPickup):    {},
}

// 注文作成の入力を副作用の前に検証する
// アノテーションではなく明示的な関数で、全フィールド分のエラーを一度に返す
func ValidateOrderCreate(
	items []OrderItemInput,
	addr model.ShippingAddress,
	paymentMethod string,
	shippingMethod string,
	notes string,
) []FieldError {
	var errs []FieldError

	if len(items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "at least one item is required"})
	}
	for i, it := range items {
		if it.ProductID <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: "must be positive",
			})
		}
		if it.Quantity <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "must be positive",
			})
		}
	}

	if _, ok := validPaymentMethods[paymentMethod]; !ok {
		errs = append(errs, FieldError{Field: "payment_method", Message: "invalid payment method"})
	}
	if _, ok := validShippingMethods[shippingMethod]; !ok {
		errs = append(errs, FieldError{Field: "shipping_method", Message: "invalid shipping method"})
	}

	if strings.TrimSpace(addr.RecipientName) == "" {
		errs = append(errs, FieldError{Field: "shipping_address.recipient_name", Message: "required"})
	}
	if strings.TrimSpace(addr.RecipientPhone) == "" {
		errs = append(errs, FieldError{Field: "shipping_address.recipient_phone", Message: "required"})
	}
	if strings.TrimSpace(addr.StreetAddress) == "" {
		errs = append(errs, FieldError{Field: "shipping_address.street_address", Message: "required"})
	}
	if strings.TrimSpace(addr.City) == "" {
		errs = append(errs, FieldError{Field: "shipping_address.city", Message: "required"})
	}
	if strings.TrimSpace(addr.Country) == "" {
		errs = append(errs, FieldError{Field: "shipping_address.country", Message: "required"})
	}

	if len(notes) > 500 {
		errs = append(errs, FieldError{Field: "notes", Message: "must be 500 characters or less"})
	}

	return errs
}
