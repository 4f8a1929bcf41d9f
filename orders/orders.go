package orders

import (
	"errors"
	"time"

	"github.com/restopos/loyalty-pos/models"
	"github.com/restopos/loyalty-pos/store"
	"github.com/restopos/loyalty-pos/utils"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidIndex  = errors.New("invalid line or unit index")
	ErrInvalidStatus = errors.New("unknown order status")
)

const keyOrders = "pos_orders"

// Service is the order fulfillment state machine. Kitchen and bar staff
// report completion per physical unit; the order flips to ready on its own
// once every unit is done, while handoff and payment stay deliberate staff
// actions.
type Service struct {
	kv  store.KV
	Now func() time.Time
}

func NewService(kv store.KV) *Service {
	return &Service{kv: kv, Now: time.Now}
}

func validStatus(status string) bool {
	switch status {
	case models.OrderPending, models.OrderPreparing, models.OrderPrepared,
		models.OrderReady, models.OrderHanded, models.OrderPaid:
		return true
	}
	return false
}

func (s *Service) load() ([]models.Order, error) {
	var list []models.Order
	if _, err := s.kv.Get(keyOrders, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) save(list []models.Order) error {
	return s.kv.Set(keyOrders, list)
}

// Create builds a pending order with every unit flag false. Product names
// are taken as-is; menu validation belongs to the caller.
func (s *Service) Create(table string, partySize int, dishes []models.DishLine, drinks []models.DrinkLine) (*models.Order, error) {
	list, err := s.load()
	if err != nil {
		return nil, err
	}

	var maxID uint
	for _, o := range list {
		if o.ID > maxID {
			maxID = o.ID
		}
	}

	now := s.Now()
	order := models.Order{
		ID:        maxID + 1,
		Table:     table,
		PartySize: partySize,
		Status:    models.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, d := range dishes {
		d.Prepared = make([]bool, d.Quantity)
		d.Delivered = nil
		order.DishLines = append(order.DishLines, d)
	}
	for _, d := range drinks {
		d.Delivered = make([]bool, d.Quantity)
		order.DrinkLines = append(order.DrinkLines, d)
	}

	list = append(list, order)
	if err := s.save(list); err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("order %d created for table %s", order.ID, table)
	return &order, nil
}

func (s *Service) Get(id uint) (*models.Order, error) {
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *Service) List() ([]models.Order, error) {
	return s.load()
}

// AdvanceState sets the order state directly, used for the kitchen stage
// changes and the waiter/cashier confirmations. An unknown order id is a
// deliberate no-op and returns a nil order.
func (s *Service) AdvanceState(id uint, status string) (*models.Order, error) {
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	list, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			list[i].Status = status
			list[i].UpdatedAt = s.Now()
			if err := s.save(list); err != nil {
				return nil, err
			}
			order := list[i]
			return &order, nil
		}
	}
	return nil, nil
}

// MarkDishPrepared flags one unit of a dish line as prepared. Re-marking a
// prepared unit changes nothing.
func (s *Service) MarkDishPrepared(id uint, lineIndex, unitIndex int) (*models.Order, error) {
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := orderIndex(list, id)
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	o := &list[idx]
	if lineIndex < 0 || lineIndex >= len(o.DishLines) {
		return nil, ErrInvalidIndex
	}
	line := &o.DishLines[lineIndex]
	if unitIndex < 0 || unitIndex >= line.Quantity {
		return nil, ErrInvalidIndex
	}

	line.Prepared[unitIndex] = true
	o.UpdatedAt = s.Now()
	refreshState(o, s.Now())

	if err := s.save(list); err != nil {
		return nil, err
	}
	order := list[idx]
	return &order, nil
}

// MarkDrinkDelivered flags one unit of a drink line as delivered.
func (s *Service) MarkDrinkDelivered(id uint, lineIndex, unitIndex int) (*models.Order, error) {
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := orderIndex(list, id)
	if idx == -1 {
		return nil, ErrOrderNotFound
	}

	o := &list[idx]
	if lineIndex < 0 || lineIndex >= len(o.DrinkLines) {
		return nil, ErrInvalidIndex
	}
	line := &o.DrinkLines[lineIndex]
	if unitIndex < 0 || unitIndex >= line.Quantity {
		return nil, ErrInvalidIndex
	}

	line.Delivered[unitIndex] = true
	o.UpdatedAt = s.Now()
	refreshState(o, s.Now())

	if err := s.save(list); err != nil {
		return nil, err
	}
	order := list[idx]
	return &order, nil
}

// Reset clears all orders. Used by the full-system reset, not by the normal
// flow.
func (s *Service) Reset() error {
	return s.kv.Delete(keyOrders)
}

func orderIndex(list []models.Order, id uint) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// refreshState applies the only automatic transition: every dish unit
// prepared and every drink unit delivered moves the order to ready, unless
// staff already handed it over or took payment.
func refreshState(o *models.Order, now time.Time) {
	if !allUnitsDone(o) {
		return
	}
	if o.Status == models.OrderHanded || o.Status == models.OrderPaid {
		return
	}
	o.Status = models.OrderReady
	o.UpdatedAt = now
}

func allUnitsDone(o *models.Order) bool {
	for _, line := range o.DishLines {
		for _, done := range line.Prepared {
			if !done {
				return false
			}
		}
	}
	for _, line := range o.DrinkLines {
		for _, done := range line.Delivered {
			if !done {
				return false
			}
		}
	}
	return true
}
