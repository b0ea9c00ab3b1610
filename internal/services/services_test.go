package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food_ordering/internal/models"
	"food_ordering/internal/redis"
	"food_ordering/internal/repository/repotest"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var manila = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		panic(err)
	}
	return loc
}()

// wednesdayAfternoon is inside weekday opening hours.
var wednesdayAfternoon = time.Date(2026, 10, 21, 14, 0, 0, 0, manila)

type published struct {
	key     string
	payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{key: key, payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.key)
	}
	return out
}

type sentMessage struct {
	phone, message string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendTextMessage(_ context.Context, phone, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{phone: phone, message: message})
	return f.err
}

type fixture struct {
	store     *repotest.Store
	mr        *miniredis.Miniredis
	redis     *redis.Client
	publisher *recordingPublisher
	sender    *fakeSender
	now       time.Time
	hours     *BusinessHours

	cart         CartService
	menu         MenuService
	orders       OrderService
	reservations ReservationService
	users        UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     repotest.NewStore(),
		mr:        miniredis.RunT(t),
		publisher: &recordingPublisher{},
		sender:    &fakeSender{},
		now:       wednesdayAfternoon,
	}
	f.redis = redis.NewFromAddr(f.mr.Addr())
	t.Cleanup(func() { f.redis.Close() })
	f.hours = NewBusinessHours(manila, func() time.Time { return f.now })

	whatsapp := NewWhatsAppService(f.sender)
	f.cart = NewCartService(f.store.Products(), f.redis, time.Hour, decimal.RequireFromString("0.085"))
	f.menu = NewMenuService(f.store.Products(), t.TempDir(), 1024)
	f.orders = NewOrderService(OrderServiceDeps{
		Orders:        f.store.Orders(),
		OrderItems:    f.store.OrderItems(),
		Customers:     f.store.Customers(),
		Reservations:  f.store.Reservations(),
		Notifications: f.store.Notifications(),
		Cart:          f.cart,
		Redis:         f.redis,
		Publisher:     f.publisher,
		WhatsApp:      whatsapp,
		Hours:         f.hours,
		DeliveryFee:   decimal.RequireFromString("3.99"),
		StatusTTL:     time.Hour,
	})
	f.reservations = NewReservationService(f.store.Reservations(), f.hours, "+1 (555) 123-4567", f.publisher, whatsapp)
	f.users = NewUserService(f.store.Customers(), f.store.Admins())
	return f
}

func (f *fixture) product(t *testing.T, name, price string, available bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  "Food",
		Available: available,
	}
	require.NoError(t, f.store.Products().Create(p))
	return p
}

var errBroker = errors.New("broker down")
