package validator_test

import (
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/validator"

	"github.com/stretchr/testify/assert"
)

func goodAddress() model.ShippingAddress {
	return model.ShippingAddress{
		RecipientName:  "Tran Van A",
		RecipientPhone: "0901234567",
		StreetAddress:  "12 Le Loi",
		City:           "Da Nang",
		Country:        "Vietnam",
	}
}

func fieldsOf(errs []validator.FieldError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestValidateOrderCreate_OK(t *testing.T) {
	errs := validator.ValidateOrderCreate(
		[]validator.OrderItemInput{{ProductID: 1, Quantity: 2}},
		goodAddress(),
		"CREDIT_CARD",
		"STANDARD",
		"please deliver in the morning",
	)
	assert.Empty(t, errs)
}

func TestValidateOrderCreate_EmptyItems(t *testing.T) {
	errs := validator.ValidateOrderCreate(nil, goodAddress(), "CREDIT_CARD", "STANDARD", "")
	assert.Contains(t, fieldsOf(errs), "items")
}

func TestValidateOrderCreate_NonPositiveItemValues(t *testing.T) {
	errs := validator.ValidateOrderCreate(
		[]validator.OrderItemInput{
			{ProductID: 0, Quantity: 1},
			{ProductID: 2, Quantity: 0},
			{ProductID: 3, Quantity: -1},
		},
		goodAddress(),
		"CREDIT_CARD",
		"STANDARD",
		"",
	)

	fields := fieldsOf(errs)
	assert.Contains(t, fields, "items[0].product_id")
	assert.Contains(t, fields, "items[1].quantity")
	assert.Contains(t, fields, "items[2].quantity")
}

func TestValidateOrderCreate_InvalidMethods(t *testing.T) {
	errs := validator.ValidateOrderCreate(
		[]validator.OrderItemInput{{ProductID: 1, Quantity: 1}},
		goodAddress(),
		"BITCOIN",
		"DRONE",
		"",
	)

	fields := fieldsOf(errs)
	assert.Contains(t, fields, "payment_method")
	assert.Contains(t, fields, "shipping_method")
}

func TestValidateOrderCreate_MissingAddressFields(t *testing.T) {
	errs := validator.ValidateOrderCreate(
		[]validator.OrderItemInput{{ProductID: 1, Quantity: 1}},
		model.ShippingAddress{Ward: "Hai Chau"},
		"CREDIT_CARD",
		"STANDARD",
		"",
	)

	fields := fieldsOf(errs)
	assert.Contains(t, fields, "shipping_address.recipient_name")
	assert.Contains(t, fields, "shipping_address.recipient_phone")
	assert.Contains(t, fields, "shipping_address.street_address")
	assert.Contains(t, fields, "shipping_address.city")
	assert.Contains(t, fields, "shipping_address.country")
}

func TestValidateOrderCreate_NotesTooLong(t *testing.T) {
	errs := validator.ValidateOrderCreate(
		[]validator.OrderItemInput{{ProductID: 1, Quantity: 1}},
		goodAddress(),
		"CREDIT_CARD",
		"STANDARD",
		strings.Repeat("x", 501),
	)
	assert.Contains(t, fieldsOf(errs), "notes")

	// ちょうど500はOK
	errs = validator.ValidateOrderCreate(
		[]validator.OrderItemInput{{ProductID: 1, Quantity: 1}},
		goodAddress(),
		"CREDIT_CARD",
		"STANDARD",
		strings.Repeat("x", 500),
	)
	assert.Empty(t, errs)
}

func TestValidateOrderCreate_CollectsAllErrorsAtOnce(t *testing.T) {
	errs := validator.ValidateOrderCreate(nil, model.ShippingAddress{}, "", "", "")

	// 一度の呼び出しで全フィールドのエラーが揃う
	assert.GreaterOrEqual(t, len(errs), 8)

	msg := validator.JoinFieldErrors(errs)
	assert.Contains(t, msg, "items: at least one item is required")
	assert.Contains(t, msg, "payment_method: invalid payment method")
}
