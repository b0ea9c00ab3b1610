package repository

import (
	"path/filepath"
	"testing"
	"time"

	"food_ordering/internal/database"
	"food_ordering/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Times are whole seconds in UTC so sqlite's text timestamps sort the same
// way postgres compares them.
var baseTime = time.Date(2026, 10, 21, 6, 0, 0, 0, time.UTC)

type RepositorySuite struct {
	suite.Suite
	db            *gorm.DB
	orders        OrderRepository
	items         OrderItemRepository
	reservations  ReservationRepository
	notifications NotificationRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(filepath.Join(s.T().TempDir(), "orders.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.AutoMigrate(db))

	s.db = db
	s.orders = NewOrderRepository(db)
	s.items = NewOrderItemRepository(db)
	s.reservations = NewReservationRepository(db)
	s.notifications = NewNotificationRepository(db)
}

func (s *RepositorySuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())
}

func money(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func (s *RepositorySuite) placeOrder(name, email, phone, status string, at time.Time, items ...models.OrderItem) *models.Order {
	order := &models.Order{
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		OrderType:     string(models.OrderTypePickup),
		PaymentMethod: "cash",
		OrderDate:     at,
		Subtotal:      money("10.00"),
		TaxAmount:     money("0.85"),
		DeliveryFee:   decimal.Zero,
		TotalAmount:   money("10.85"),
		Status:        status,
		Items:         items,
	}
	s.Require().NoError(s.orders.CreateWithItems(order))
	return order
}

func line(productID uint, name string, qty int) models.OrderItem {
	return models.OrderItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		Price:       money("5.00"),
		Subtotal:    money("5.00").Mul(decimal.NewFromInt(int64(qty))),
	}
}

func ids(orders []models.Order) []uint {
	out := make([]uint, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func (s *RepositorySuite) TestCreateWithItemsAndGetByID() {
	order := s.placeOrder("Ana Santos", "ana@example.com", "09171234567", "pending", baseTime,
		line(1, "Burger", 2), line(2, "Fries", 1))

	got, err := s.orders.GetByID(order.ID)
	s.Require().NoError(err)
	s.Len(got.Items, 2)
	s.Equal(order.ID, got.Items[0].OrderID)
	s.True(got.TotalAmount.Equal(money("10.85")), got.TotalAmount.String())

	stored, err := s.items.GetByOrderID(order.ID)
	s.Require().NoError(err)
	s.Equal("Burger", stored[0].ProductName)
	s.True(stored[0].Subtotal.Equal(money("10.00")))

	_, err = s.orders.GetByID(order.ID + 100)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestSearchGroupsTextMatches() {
	maria := s.placeOrder("Maria Cruz", "maria@example.com", "09170000001", "pending", baseTime)
	jose := s.placeOrder("Jose Rizal", "jose@example.com", "09170000002", "completed", baseTime.Add(time.Minute))
	ana := s.placeOrder("Ana Reyes", "ana@example.com", "09179990003", "pending", baseTime.Add(2*time.Minute))

	got, err := s.orders.Search(OrderFilter{Query: "MARIA"})
	s.Require().NoError(err)
	s.Equal([]uint{maria.ID}, ids(got))

	// An email match on a completed order must not leak past the status filter.
	got, err = s.orders.Search(OrderFilter{Status: "pending", Query: "jose"})
	s.Require().NoError(err)
	s.Empty(got)

	got, err = s.orders.Search(OrderFilter{Status: "completed", Query: "jose@"})
	s.Require().NoError(err)
	s.Equal([]uint{jose.ID}, ids(got))

	got, err = s.orders.Search(OrderFilter{Query: "9990003"})
	s.Require().NoError(err)
	s.Equal([]uint{ana.ID}, ids(got))

	got, err = s.orders.Search(OrderFilter{Status: "pending"})
	s.Require().NoError(err)
	s.Equal([]uint{ana.ID, maria.ID}, ids(got))

	got, err = s.orders.Search(OrderFilter{Status: "pending", Limit: 1})
	s.Require().NoError(err)
	s.Equal([]uint{ana.ID}, ids(got))
}

func (s *RepositorySuite) TestSearchByOrderNumber() {
	first := s.placeOrder("Maria Cruz", "maria@example.com", "09170000001", "pending", baseTime)
	s.placeOrder("Jose Rizal", "jose@example.com", "09170000002", "pending", baseTime.Add(time.Minute))

	got, err := s.orders.Search(OrderFilter{Query: "#1"})
	s.Require().NoError(err)
	s.Contains(ids(got), first.ID)
	s.Len(got, 1)
}

func (s *RepositorySuite) TestCountsAndRecent() {
	old := s.placeOrder("Maria Cruz", "maria@example.com", "1", "completed", baseTime.Add(-2*time.Hour))
	recent := s.placeOrder("Jose Rizal", "jose@example.com", "2", "pending", baseTime.Add(-10*time.Minute))

	n, err := s.orders.Count()
	s.Require().NoError(err)
	s.EqualValues(2, n)

	n, err = s.orders.CountByStatus("pending")
	s.Require().NoError(err)
	s.EqualValues(1, n)

	n, err = s.orders.CountSince(baseTime.Add(-time.Hour))
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got, err := s.orders.Recent(10)
	s.Require().NoError(err)
	s.Equal([]uint{recent.ID, old.ID}, ids(got))

	customerID := uint(5)
	mine := s.placeOrder("Ana Reyes", "ana@example.com", "3", "pending", baseTime)
	s.Require().NoError(s.db.Model(mine).Update("customer_id", customerID).Error)
	got, err = s.orders.GetByCustomerID(customerID)
	s.Require().NoError(err)
	s.Equal([]uint{mine.ID}, ids(got))
}

func (s *RepositorySuite) TestUpdateStatus() {
	order := s.placeOrder("Maria Cruz", "maria@example.com", "1", "pending", baseTime)

	s.Require().NoError(s.orders.UpdateStatus(order.ID, "preparing"))
	got, err := s.orders.GetByID(order.ID)
	s.Require().NoError(err)
	s.Equal("preparing", got.Status)

	s.ErrorIs(s.orders.UpdateStatus(order.ID+100, "ready"), gorm.ErrRecordNotFound)
}

func (s *RepositorySuite) TestTopProductsSkipsCancelledOrders() {
	s.placeOrder("Maria Cruz", "maria@example.com", "1", "completed", baseTime,
		line(1, "Burger", 2), line(2, "Fries", 1))
	s.placeOrder("Jose Rizal", "jose@example.com", "2", "pending", baseTime,
		line(2, "Fries", 4), line(3, "Iced Tea", 1))
	s.placeOrder("Ana Reyes", "ana@example.com", "3", "cancelled", baseTime,
		line(3, "Iced Tea", 10))

	top, err := s.items.TopProducts(5)
	s.Require().NoError(err)
	s.Equal([]ProductSales{
		{ProductID: 2, ProductName: "Fries", Quantity: 5},
		{ProductID: 1, ProductName: "Burger", Quantity: 2},
		{ProductID: 3, ProductName: "Iced Tea", Quantity: 1},
	}, top)

	top, err = s.items.TopProducts(1)
	s.Require().NoError(err)
	s.Len(top, 1)
	s.Equal("Fries", top[0].ProductName)
}

func (s *RepositorySuite) TestPendingReservations() {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	later := &models.Reservation{GuestName: "Later", GuestEmail: "a@example.com", ReservationDate: day(25), ReservationTime: "18:00", PartySize: 2}
	sooner := &models.Reservation{GuestName: "Sooner", GuestEmail: "b@example.com", ReservationDate: day(22), ReservationTime: "19:30", PartySize: 4}
	done := &models.Reservation{GuestName: "Done", GuestEmail: "a@example.com", ReservationDate: day(20), ReservationTime: "12:00", PartySize: 3, Status: "approved"}
	for _, r := range []*models.Reservation{later, sooner, done} {
		s.Require().NoError(s.reservations.Create(r))
	}

	n, err := s.reservations.CountPending()
	s.Require().NoError(err)
	s.EqualValues(2, n)

	pending, err := s.reservations.ListPending(5)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("Sooner", pending[0].GuestName)

	mine, err := s.reservations.GetByEmail("a@example.com")
	s.Require().NoError(err)
	s.Len(mine, 2)
}

func (s *RepositorySuite) TestNotificationsReadState() {
	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.notifications.Create(&models.Notification{
			OrderID:   uint(i),
			Message:   "New order",
			CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := s.notifications.List(10, false)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(uint(3), list[0].OrderID)

	s.Require().NoError(s.notifications.MarkRead(list[0].ID))
	n, err := s.notifications.CountUnread()
	s.Require().NoError(err)
	s.EqualValues(2, n)

	unread, err := s.notifications.List(10, true)
	s.Require().NoError(err)
	s.Len(unread, 2)

	s.ErrorIs(s.notifications.MarkRead(999), gorm.ErrRecordNotFound)
}
