package services

import (
	"context"
	"fmt"
	"strings"

	"food_ordering/internal/models"

	"github.com/rs/zerolog/log"
)

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// WhatsAppService tells guests about changes to their orders and bookings.
// Without a sender every notification is skipped.
type WhatsAppService interface {
	NotifyOrderStatus(ctx context.Context, order *models.Order) error
	NotifyReservationStatus(ctx context.Context, reservation *models.Reservation) error
}

type whatsappService struct {
	client MessageSender
}

func NewWhatsAppService(client MessageSender) WhatsAppService {
	return &whatsappService{client: client}
}

var orderStatusText = map[models.OrderStatus]string{
	models.OrderPending:        "has been received",
	models.OrderPreparing:      "is being prepared",
	models.OrderReady:          "is ready",
	models.OrderOutForDelivery: "is out for delivery",
	models.OrderCompleted:      "is complete. Thank you for ordering with us!",
	models.OrderCancelled:      "has been cancelled",
}

func OrderStatusMessage(order *models.Order) string {
	text, ok := orderStatusText[models.OrderStatus(order.Status)]
	if !ok {
		text = "is now " + order.Status
	}
	msg := fmt.Sprintf("Hi %s, your order #%d %s", firstName(order.CustomerName), order.ID, text)
	if !strings.HasSuffix(msg, "!") {
		msg += "."
	}
	return msg
}

func ReservationStatusMessage(r *models.Reservation) string {
	return fmt.Sprintf("Hi %s, your reservation for %d on %s at %s is %s.",
		firstName(r.GuestName), r.PartySize, r.ReservationDate.Format("Jan 2, 2006"), r.ReservationTime, r.Status)
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return "there"
}

func (s *whatsappService) send(ctx context.Context, phone, message string) error {
	if s.client == nil || strings.TrimSpace(phone) == "" {
		return nil
	}
	if err := s.client.SendTextMessage(ctx, phone, message); err != nil {
		log.Warn().Err(err).Str("phone", phone).Msg("whatsapp notification failed")
		return err
	}
	return nil
}

func (s *whatsappService) NotifyOrderStatus(ctx context.Context, order *models.Order) error {
	return s.send(ctx, order.CustomerPhone, OrderStatusMessage(order))
}

func (s *whatsappService) NotifyReservationStatus(ctx context.Context, r *models.Reservation) error {
	return s.send(ctx, r.GuestPhone, ReservationStatusMessage(r))
}
