package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type queryUCMocks struct {
	tx     *TxManagerMock
	orders *OrderRepoMock
	items  *OrderItemRepoMock
	clock  *fixedClock
}

func newQueryUC() (*usecase.OrderQueryUsecase, *queryUCMocks) {
	m := &queryUCMocks{
		tx:     new(TxManagerMock),
		orders: new(OrderRepoMock),
		items:  new(OrderItemRepoMock),
		clock:  &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	m.tx.Repos = &TxReposMock{
		orders:     m.orders,
		orderItems: m.items,
	}
	return usecase.NewOrderQueryUsecase(m.tx, m.clock), m
}

func TestOrderQueryUsecase_GetOrderByID_NotFound(t *testing.T) {
	uc, m := newQueryUC()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("FindByID", mock.Anything, int64(999)).Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.GetOrderByID(context.Background(), 999)
	assertErrContains(t, err, "order not found")
}

func TestOrderQueryUsecase_GetOrderByNumber(t *testing.T) {
	uc, m := newQueryUC()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("FindByOrderNumber", mock.Anything, "ORD-1-ABCD").Return(model.Order{
		ID: 10, UserID: 5, OrderNumber: "ORD-1-ABCD", Status: model.OrderStatusConfirmed,
	}, nil)
	m.items.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{
		{ID: 1, OrderID: 10, ProductID: 1, Quantity: 2},
	}, nil)

	out, err := uc.GetOrderByNumber(context.Background(), "ORD-1-ABCD")
	assert.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, 1, len(out.Items))
}

func TestOrderQueryUsecase_ListUserOrders_InvalidPaging(t *testing.T) {
	uc, m := newQueryUC()

	_, err := uc.ListUserOrders(context.Background(), 5, repo.UserOrderListFilter{Page: 0, Limit: 20})
	assertErrContains(t, err, "invalid page")

	_, err = uc.ListUserOrders(context.Background(), 5, repo.UserOrderListFilter{Page: 1, Limit: 0})
	assertErrContains(t, err, "invalid limit")

	_, err = uc.ListUserOrders(context.Background(), 5, repo.UserOrderListFilter{Page: 1, Limit: 101})
	assertErrContains(t, err, "invalid limit")

	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderQueryUsecase_ListUserOrders_Success(t *testing.T) {
	uc, m := newQueryUC()

	f := repo.UserOrderListFilter{Page: 1, Limit: 20, Status: "PENDING"}

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("ListByUserID", mock.Anything, int64(5), f).Return([]model.Order{
		{ID: 10, UserID: 5, Status: model.OrderStatusPending},
		{ID: 11, UserID: 5, Status: model.OrderStatusPending},
	}, int64(2), nil)
	m.items.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	m.items.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	out, err := uc.ListUserOrders(context.Background(), 5, f)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), out.Total)
	assert.Equal(t, 2, len(out.Orders))
	assert.Equal(t, 1, out.Page)

	m.orders.AssertExpectations(t)
	m.items.AssertExpectations(t)
}

func TestOrderQueryUsecase_GetStatistics_DefaultsToTrailingMonth(t *testing.T) {
	uc, m := newQueryUC()

	wantStart := m.clock.now.AddDate(0, -1, 0)
	wantEnd := m.clock.now

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("SumRevenue", mock.Anything, wantStart, wantEnd).
		Return(decimal.NewFromInt(1000000), int64(3), nil)
	m.orders.On("CountInRange", mock.Anything, wantStart, wantEnd).
		Return(int64(3), nil)
	m.orders.On("CountByStatus", mock.Anything).Return([]repo.OrderStatusCount{
		{Status: model.OrderStatusPending, Count: 2},
		{Status: model.OrderStatusDelivered, Count: 5},
	}, nil)

	out, err := uc.GetStatistics(context.Background(), nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, wantStart, out.From)
	assert.Equal(t, wantEnd, out.To)
	assert.Equal(t, int64(3), out.TotalOrders)
	assert.True(t, out.TotalRevenue.Equal(decimal.NewFromInt(1000000)))
	// 1000000 / 3 = 333333.33（2桁丸め）
	assert.Equal(t, "333333.33", out.AverageOrderValue.StringFixed(2))
	assert.Equal(t, int64(2), out.OrdersByStatus["PENDING"])
	assert.Equal(t, int64(5), out.OrdersByStatus["DELIVERED"])

	m.orders.AssertExpectations(t)
}

func TestOrderQueryUsecase_GetStatistics_CountsUnpaidOrders(t *testing.T) {
	uc, m := newQueryUC()

	// 売上はPAIDの2件分だけ。件数と平均の分母は未払い含む全7件
	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("SumRevenue", mock.Anything, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(1000), int64(2), nil)
	m.orders.On("CountInRange", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(7), nil)
	m.orders.On("CountByStatus", mock.Anything).Return([]repo.OrderStatusCount{}, nil)

	out, err := uc.GetStatistics(context.Background(), nil, nil)
	assert.NoError(t, err)

	assert.Equal(t, int64(7), out.TotalOrders)
	assert.True(t, out.TotalRevenue.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "142.86", out.AverageOrderValue.StringFixed(2))

	m.orders.AssertExpectations(t)
}

func TestOrderQueryUsecase_GetStatistics_ZeroOrders(t *testing.T) {
	uc, m := newQueryUC()

	m.tx.On("WithinTx", mock.Anything).Return(nil)
	m.orders.On("SumRevenue", mock.Anything, mock.Anything, mock.Anything).
		Return(decimal.Zero, int64(0), nil)
	m.orders.On("CountInRange", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), nil)
	m.orders.On("CountByStatus", mock.Anything).Return([]repo.OrderStatusCount{}, nil)

	out, err := uc.GetStatistics(context.Background(), nil, nil)
	assert.NoError(t, err)

	// 0件なら平均は0（ゼロ除算しない）
	assert.True(t, out.AverageOrderValue.IsZero())
}

func TestOrderQueryUsecase_GetStatistics_InvalidRange(t *testing.T) {
	uc, m := newQueryUC()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	_, err := uc.GetStatistics(context.Background(), &from, &to)
	assertErrContains(t, err, "invalid date range")
	m.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}
