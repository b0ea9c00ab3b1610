package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"food_ordering/internal/events"
	"food_ordering/internal/models"
	"food_ordering/internal/page"
	"food_ordering/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveryInput() PlaceOrderInput {
	return PlaceOrderInput{
		CustomerName:  "Ana Santos",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "0917 123 4567",
		Address:       "12 Rizal Street, Boac",
		OrderType:     string(models.OrderTypeDelivery),
		PaymentMethod: "cash",
	}
}

func (f *fixture) fillCart(t *testing.T, sessionID string) {
	t.Helper()
	burger := f.product(t, "Burger", "12.50", true)
	fries := f.product(t, "Fries", "10.00", true)
	_, err := f.cart.Add(sessionID, burger.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.Add(sessionID, fries.ID, 1)
	require.NoError(t, err)
}

func TestPlaceDeliveryOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")

	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)
	o := res.Order

	assert.False(t, res.OutsideHours)
	assert.False(t, o.PlacedOutsideHours)
	assert.Equal(t, "35.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "2.98", o.TaxAmount.StringFixed(2))
	assert.Equal(t, "3.99", o.DeliveryFee.StringFixed(2))
	assert.Equal(t, "41.97", o.TotalAmount.StringFixed(2))
	assert.Equal(t, string(models.OrderPending), o.Status)
	assert.Len(t, o.Items, 2)
	assert.Contains(t, res.Message, "placed successfully")

	stored, err := f.store.Orders().GetByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 Rizal Street, Boac", stored.Address)

	view, err := f.cart.View("s1")
	require.NoError(t, err)
	assert.True(t, view.Empty(), "cart is cleared after placing the order")

	status, err := f.redis.GetOrderStatus(o.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)

	n, err := f.store.Notifications().CountUnread()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, []string{events.OrderPlaced}, f.publisher.keys())
}

func TestPlacePickupOrderHasNoFee(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	in := deliveryInput()
	in.OrderType = string(models.OrderTypePickup)
	in.Address = ""

	res, err := f.orders.PlaceOrder(context.Background(), "s1", in)
	require.NoError(t, err)
	assert.True(t, res.Order.DeliveryFee.IsZero())
	assert.Equal(t, "37.98", res.Order.TotalAmount.StringFixed(2))
	assert.Empty(t, res.Order.Address)
}

func TestPlaceOrderValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*PlaceOrderInput)
		field string
		msg   string
	}{
		{"short address", func(in *PlaceOrderInput) { in.Address = "123456789" }, "customer_address", page.MsgDeliveryAddress},
		{"padded address", func(in *PlaceOrderInput) { in.Address = "   12345   " }, "customer_address", page.MsgDeliveryAddress},
		{"missing name", func(in *PlaceOrderInput) { in.CustomerName = " " }, "customer_name", page.MsgRequired},
		{"bad email", func(in *PlaceOrderInput) { in.CustomerEmail = "ana@" }, "customer_email", page.MsgEmail},
		{"bad phone", func(in *PlaceOrderInput) { in.CustomerPhone = "call me" }, "customer_phone", page.MsgPhone},
		{"unknown type", func(in *PlaceOrderInput) { in.OrderType = "drone" }, "order_type", page.MsgInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.fillCart(t, "s1")
			in := deliveryInput()
			tt.edit(&in)

			_, err := f.orders.PlaceOrder(context.Background(), "s1", in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])

			view, err := f.cart.View("s1")
			require.NoError(t, err)
			assert.False(t, view.Empty(), "cart survives a rejected order")
			assert.Empty(t, f.publisher.keys())
		})
	}
}

func TestPlaceOrderTenCharacterAddress(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	in := deliveryInput()
	in.Address = "1234567890"

	_, err := f.orders.PlaceOrder(context.Background(), "s1", in)
	assert.NoError(t, err)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestPlaceOrderOutsideHours(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2026, 10, 21, 22, 30, 0, 0, manila)
	f.fillCart(t, "s1")

	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)
	assert.True(t, res.OutsideHours)
	assert.True(t, res.Order.PlacedOutsideHours)
	assert.Contains(t, res.Message, "11:00 AM to 9:00 PM")
}

func TestPlaceOrderSurvivesBrokerFailure(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errBroker
	f.fillCart(t, "s1")

	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)
	assert.NotZero(t, res.Order.ID)
}

func TestPlaceOrderStorageFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	f.store.FailCreateOrder = errBroker
	f.fillCart(t, "s1")

	_, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.ErrorIs(t, err, errBroker)

	view, err := f.cart.View("s1")
	require.NoError(t, err)
	assert.False(t, view.Empty())
}

func TestTrackOrder(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)

	tr, err := f.orders.TrackOrder(res.Order.ID)
	require.NoError(t, err)
	assert.True(t, tr.Active)
	assert.Equal(t, 30, tr.RefreshSeconds)

	_, err = f.orders.UpdateStatus(context.Background(), res.Order.ID, "Completed")
	require.NoError(t, err)
	tr, err = f.orders.TrackOrder(res.Order.ID)
	require.NoError(t, err)
	assert.False(t, tr.Active)
	assert.Zero(t, tr.RefreshSeconds)

	_, err = f.orders.TrackOrder(404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusNotifies(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)

	o, err := f.orders.UpdateStatus(context.Background(), res.Order.ID, "Out for Delivery")
	require.NoError(t, err)
	assert.Equal(t, "out-for-delivery", o.Status)

	status, err := f.orders.OrderStatus(o.ID)
	require.NoError(t, err)
	assert.Equal(t, "out-for-delivery", status)

	assert.Equal(t, []string{events.OrderPlaced, events.OrderStatus}, f.publisher.keys())
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "0917 123 4567", f.sender.sent[0].phone)
	assert.Equal(t, OrderStatusMessage(o), f.sender.sent[0].message)
	assert.Contains(t, f.sender.sent[0].message, "Hi Ana, your order #")
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.orders.UpdateStatus(context.Background(), 1, "teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.orders.UpdateStatus(context.Background(), 1, "ready")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderStatusFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	res, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)

	f.mr.FlushAll()
	status, err := f.orders.OrderStatus(res.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status)
	assert.True(t, f.mr.Exists(fmt.Sprintf("order_status:%d", res.Order.ID)), "status is cached again")
}

func TestSearchOrders(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	_, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)

	got, err := f.orders.SearchOrders(repository.OrderFilter{Status: "Pending", Query: "ana"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.orders.SearchOrders(repository.OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDashboardAndNewOrdersCount(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, "s1")
	_, err := f.orders.PlaceOrder(context.Background(), "s1", deliveryInput())
	require.NoError(t, err)
	require.NoError(t, f.store.Customers().Create(&models.Customer{Email: "a@b.co", FullName: "A"}))

	stats, err := f.orders.Dashboard()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.TotalCustomers)
	assert.EqualValues(t, 1, stats.UnreadNotifications)
	assert.Len(t, stats.RecentOrders, 1)
	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, "Burger", stats.TopProducts[0].ProductName)

	count, err := f.orders.NewOrdersCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count.NewOrders)

	f.now = f.now.Add(2 * time.Hour)
	count, err = f.orders.NewOrdersCount()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count.NewOrders)
	assert.EqualValues(t, 1, count.PendingOrders)
}
