package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"food_ordering/internal/events"
	"food_ordering/internal/models"
	"food_ordering/internal/page"
	"food_ordering/internal/redis"
	"food_ordering/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// NewOrderWindow is how far back the admin "new orders" badge looks.
const NewOrderWindow = time.Hour

type PlaceOrderInput struct {
	CustomerID          *uint  `json:"-"`
	CustomerName        string `json:"customer_name"`
	CustomerEmail       string `json:"customer_email"`
	CustomerPhone       string `json:"customer_phone"`
	Address             string `json:"customer_address"`
	OrderType           string `json:"order_type"`
	PaymentMethod       string `json:"payment_method"`
	SpecialInstructions string `json:"special_instructions"`
}

func (in PlaceOrderInput) validate() error {
	verr := NewValidationError()
	check := func(field, value string, c page.Constraints) {
		if res := page.CheckValue(value, c); !res.Valid {
			verr.Add(field, res.Message)
		}
	}
	check("customer_name", in.CustomerName, page.Constraints{Required: true})
	check("customer_email", in.CustomerEmail, page.Constraints{Required: true, Type: "email"})
	check("customer_phone", in.CustomerPhone, page.Constraints{Required: true, Type: "tel"})
	check("order_type", in.OrderType, page.Constraints{Required: true})
	check("payment_method", in.PaymentMethod, page.Constraints{Required: true})

	if in.OrderType != "" && !models.IsOrderType(in.OrderType) {
		verr.Add("order_type", page.MsgInvalid)
	}
	if in.OrderType == string(models.OrderTypeDelivery) {
		if res := page.CheckDeliveryAddress(in.Address); !res.Valid {
			verr.Add("customer_address", res.Message)
		}
	}
	return verr.OrNil()
}

type PlaceOrderResult struct {
	Order        *models.Order `json:"order"`
	OutsideHours bool          `json:"outside_hours"`
	Message      string        `json:"message"`
}

// OrderTracking is what the tracking page shows. RefreshSeconds is set while
// the order is still moving.
type OrderTracking struct {
	Order          *models.Order `json:"order"`
	Active         bool          `json:"active"`
	RefreshSeconds int           `json:"refresh_seconds,omitempty"`
}

type DashboardStats struct {
	TotalOrders         int64                     `json:"total_orders"`
	PendingOrders       int64                     `json:"pending_orders"`
	TotalCustomers      int64                     `json:"total_customers"`
	PendingReservations int64                     `json:"pending_reservations"`
	UnreadNotifications int64                     `json:"unread_notifications"`
	RecentOrders        []models.Order            `json:"recent_orders"`
	UpcomingBookings    []models.Reservation      `json:"pending_reservations_list"`
	TopProducts         []repository.ProductSales `json:"top_products"`
}

type NewOrdersCount struct {
	PendingOrders int64 `json:"pending_orders"`
	NewOrders     int64 `json:"new_orders"`
	TotalPending  int64 `json:"total_pending"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (*PlaceOrderResult, error)
	TrackOrder(id uint) (*OrderTracking, error)
	// OrderStatus answers from the status cache and falls back to the database.
	OrderStatus(id uint) (string, error)
	GetCustomerOrders(customerID uint) ([]models.Order, error)
	SearchOrders(filter repository.OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error)
	Dashboard() (*DashboardStats, error)
	NewOrdersCount() (*NewOrdersCount, error)
}

type OrderServiceDeps struct {
	Orders        repository.OrderRepository
	OrderItems    repository.OrderItemRepository
	Customers     repository.CustomerRepository
	Reservations  repository.ReservationRepository
	Notifications repository.NotificationRepository
	Cart          CartService
	Redis         *redis.Client
	Publisher     events.Publisher
	WhatsApp      WhatsAppService
	Hours         *BusinessHours
	DeliveryFee   decimal.Decimal
	StatusTTL     time.Duration
}

type orderService struct {
	OrderServiceDeps
}

func NewOrderService(deps OrderServiceDeps) OrderService {
	return &orderService{OrderServiceDeps: deps}
}

type orderPlacedEvent struct {
	OrderID            uint            `json:"order_id"`
	OrderType          string          `json:"order_type"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	ItemCount          int             `json:"item_count"`
	PlacedOutsideHours bool            `json:"placed_outside_hours"`
}

type orderStatusEvent struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

func (s *orderService) PlaceOrder(ctx context.Context, sessionID string, input PlaceOrderInput) (*PlaceOrderResult, error) {
	cart, err := s.Cart.Checkout(sessionID)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := s.Hours.Now()
	outside := !s.Hours.IsOpen(now)

	fee := decimal.Zero
	address := ""
	if input.OrderType == string(models.OrderTypeDelivery) {
		fee = s.DeliveryFee
		address = strings.TrimSpace(input.Address)
	}

	order := &models.Order{
		CustomerID:          input.CustomerID,
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerEmail:       strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		Address:             address,
		OrderType:           input.OrderType,
		PaymentMethod:       input.PaymentMethod,
		OrderDate:           now,
		Subtotal:            cart.Subtotal.Round(2),
		TaxAmount:           cart.Tax.Round(2),
		DeliveryFee:         fee,
		TotalAmount:         cart.Total.Add(fee).Round(2),
		Status:              string(models.OrderPending),
		SpecialInstructions: strings.TrimSpace(input.SpecialInstructions),
		PlacedOutsideHours:  outside,
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
			Subtotal:    line.Subtotal.Round(2),
		})
	}

	if err := s.Orders.CreateWithItems(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	log.Info().Uint("order_id", order.ID).Str("order_type", order.OrderType).
		Str("total", order.TotalAmount.StringFixed(2)).Bool("outside_hours", outside).
		Msg("order placed")

	if err := s.Cart.Clear(sessionID); err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to clear cart")
	}
	s.afterPlaced(ctx, order, cart.ItemCount)

	res := &PlaceOrderResult{Order: order, OutsideHours: outside}
	if outside {
		res.Message = fmt.Sprintf("Order #%d placed successfully! Note: The restaurant is currently closed. Our hours are %s. Your order will be processed when we open.",
			order.ID, s.Hours.HoursText(now))
	} else {
		res.Message = fmt.Sprintf("Order #%d placed successfully!", order.ID)
	}
	return res, nil
}

// afterPlaced runs the side effects of a new order. None of them can undo it.
func (s *orderService) afterPlaced(ctx context.Context, order *models.Order, itemCount int) {
	note := &models.Notification{
		OrderID:   order.ID,
		Message:   fmt.Sprintf("New %s order #%d from %s", order.OrderType, order.ID, order.CustomerName),
		CreatedAt: order.OrderDate,
	}
	if err := s.Notifications.Create(note); err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Msg("failed to create notification")
	}
	s.cacheStatus(order.ID, order.Status)
	s.publish(ctx, events.OrderPlaced, orderPlacedEvent{
		OrderID:            order.ID,
		OrderType:          order.OrderType,
		TotalAmount:        order.TotalAmount,
		ItemCount:          itemCount,
		PlacedOutsideHours: order.PlacedOutsideHours,
	})
}

func (s *orderService) cacheStatus(id uint, status string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.SetOrderStatus(id, status, s.StatusTTL); err != nil {
		log.Warn().Err(err).Uint("order_id", id).Msg("failed to cache order status")
	}
}

func (s *orderService) publish(ctx context.Context, key string, payload interface{}) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Msg("failed to publish event")
	}
}

func (s *orderService) TrackOrder(id uint) (*OrderTracking, error) {
	order, err := s.Orders.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	t := &OrderTracking{Order: order, Active: page.IsActiveStatus(order.Status)}
	if t.Active {
		t.RefreshSeconds = int(page.RefreshInterval / time.Second)
	}
	return t, nil
}

func (s *orderService) OrderStatus(id uint) (string, error) {
	if s.Redis != nil {
		if status, err := s.Redis.GetOrderStatus(id); err == nil {
			return status, nil
		}
	}
	order, err := s.Orders.GetByID(id)
	if err != nil {
		return "", notFound(err)
	}
	s.cacheStatus(order.ID, order.Status)
	return order.Status, nil
}

func (s *orderService) GetCustomerOrders(customerID uint) ([]models.Order, error) {
	return s.Orders.GetByCustomerID(customerID)
}

func (s *orderService) SearchOrders(filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" {
		filter.Status = page.NormalizeStatus(filter.Status)
		if !models.IsOrderStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.Orders.Search(filter)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	status = page.NormalizeStatus(status)
	if !models.IsOrderStatus(status) {
		return nil, ErrInvalidStatus
	}
	if err := s.Orders.UpdateStatus(id, status); err != nil {
		return nil, notFound(err)
	}
	order, err := s.Orders.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	log.Info().Uint("order_id", id).Str("status", status).Msg("order status updated")

	s.cacheStatus(id, status)
	s.publish(ctx, events.OrderStatus, orderStatusEvent{OrderID: id, Status: status})
	if s.WhatsApp != nil {
		s.WhatsApp.NotifyOrderStatus(ctx, order)
	}
	return order, nil
}

func (s *orderService) Dashboard() (*DashboardStats, error) {
	var stats DashboardStats
	var err error
	if stats.TotalOrders, err = s.Orders.Count(); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if stats.PendingOrders, err = s.Orders.CountByStatus(string(models.OrderPending)); err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if stats.TotalCustomers, err = s.Customers.Count(); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if stats.PendingReservations, err = s.Reservations.CountPending(); err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	if stats.UnreadNotifications, err = s.Notifications.CountUnread(); err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	if stats.RecentOrders, err = s.Orders.Recent(10); err != nil {
		return nil, fmt.Errorf("failed to load recent orders: %w", err)
	}
	if stats.UpcomingBookings, err = s.Reservations.ListPending(5); err != nil {
		return nil, fmt.Errorf("failed to load pending reservations: %w", err)
	}
	if stats.TopProducts, err = s.OrderItems.TopProducts(5); err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	return &stats, nil
}

func (s *orderService) NewOrdersCount() (*NewOrdersCount, error) {
	pending, err := s.Orders.CountByStatus(string(models.OrderPending))
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	recent, err := s.Orders.CountSince(s.Hours.Now().Add(-NewOrderWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to count new orders: %w", err)
	}
	return &NewOrdersCount{PendingOrders: pending, NewOrders: recent, TotalPending: pending}, nil
}
