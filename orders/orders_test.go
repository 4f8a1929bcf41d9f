package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

var testTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	utils.InitLogger()
	s := NewService(store.NewMemory())
	s.Now = func() time.Time { return testTime }
	return s
}

func newTestOrder(t *testing.T, s *Service) *models.Order {
	order, err := s.Create("5", 2,
		[]models.DishLine{{Product: "Paella", Quantity: 2}},
		[]models.DrinkLine{{Product: "Sangria", Quantity: 1}},
	)
	assert.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	assert.Equal(t, uint(1), order.ID)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "5", order.Table)
	assert.Equal(t, []bool{false, false}, order.DishLines[0].Prepared)
	assert.Equal(t, []bool{false}, order.DrinkLines[0].Delivered)

	second := newTestOrder(t, s)
	assert.Equal(t, uint(2), second.ID)
}

func TestGetUnknownOrder(t *testing.T) {
	s := newTestService()
	_, err := s.Get(42)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAutoReadyOnlyWhenEveryUnitDone(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	order, err := s.MarkDishPrepared(order.ID, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)

	order, err = s.MarkDishPrepared(order.ID, 0, 1)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)

	// the last drink unit completes the order
	order, err = s.MarkDrinkDelivered(order.ID, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderReady, order.Status)
}

func TestNoAutoTransitionPastHandover(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	_, err := s.AdvanceState(order.ID, models.OrderHanded)
	assert.NoError(t, err)

	_, err = s.MarkDishPrepared(order.ID, 0, 0)
	assert.NoError(t, err)
	_, err = s.MarkDishPrepared(order.ID, 0, 1)
	assert.NoError(t, err)
	order, err = s.MarkDrinkDelivered(order.ID, 0, 0)
	assert.NoError(t, err)

	assert.Equal(t, models.OrderHanded, order.Status)
}

func TestRemarkingIsIdempotent(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	order, err := s.MarkDishPrepared(order.ID, 0, 0)
	assert.NoError(t, err)
	again, err := s.MarkDishPrepared(order.ID, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, order.DishLines[0].Prepared, again.DishLines[0].Prepared)
	assert.Equal(t, models.OrderPending, again.Status)
}

func TestMarkRejectsBadIndexes(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	_, err := s.MarkDishPrepared(order.ID, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = s.MarkDishPrepared(order.ID, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = s.MarkDrinkDelivered(order.ID, 0, -1)
	assert.ErrorIs(t, err, ErrInvalidIndex)

	_, err = s.MarkDishPrepared(99, 0, 0)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestAdvanceState(t *testing.T) {
	s := newTestService()
	order := newTestOrder(t, s)

	updated, err := s.AdvanceState(order.ID, models.OrderPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderPreparing, updated.Status)

	_, err = s.AdvanceState(order.ID, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAdvanceStateUnknownOrderIsNoOp(t *testing.T) {
	s := newTestService()

	order, err := s.AdvanceState(42, models.OrderReady)
	assert.NoError(t, err)
	assert.Nil(t, order)
}

func TestReset(t *testing.T) {
	s := newTestService()
	newTestOrder(t, s)
	newTestOrder(t, s)

	assert.NoError(t, s.Reset())

	list, err := s.List()
	assert.NoError(t, err)
	assert.Empty(t, list)

	// ids start from 1 again after a reset
	order := newTestOrder(t, s)
	assert.Equal(t, uint(1), order.ID)
}
