package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"food_ordering/internal/events"
	"food_ordering/internal/models"
	"food_ordering/internal/page"
	"food_ordering/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	MinPartySize = 1
	MaxPartySize = page.LargePartySize - 1

	timeLayout = "15:04"
)

// ReservationInput is a booking request as submitted. PartySize is a string
// because the form offers a "13+" option.
type ReservationInput struct {
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone"`
	Date            string `json:"reservation_date"`
	Time            string `json:"reservation_time"`
	PartySize       string `json:"party_size"`
	SpecialRequests string `json:"special_requests"`
}

type ReservationService interface {
	Create(ctx context.Context, input ReservationInput) (*models.Reservation, error)
	List() ([]models.Reservation, error)
	ListByEmail(email string) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id uint, status, notes string) (*models.Reservation, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	hours     *BusinessHours
	phone     string
	publisher events.Publisher
	whatsapp  WhatsAppService
}

func NewReservationService(repo repository.ReservationRepository, hours *BusinessHours, phone string,
	publisher events.Publisher, whatsapp WhatsAppService) ReservationService {
	return &reservationService{repo: repo, hours: hours, phone: phone, publisher: publisher, whatsapp: whatsapp}
}

type reservationEvent struct {
	ReservationID uint   `json:"reservation_id"`
	Date          string `json:"reservation_date"`
	Time          string `json:"reservation_time"`
	PartySize     int    `json:"party_size"`
	Status        string `json:"status"`
}

func newReservationEvent(r *models.Reservation) reservationEvent {
	return reservationEvent{
		ReservationID: r.ID,
		Date:          r.ReservationDate.Format(page.DateLayout),
		Time:          r.ReservationTime,
		PartySize:     r.PartySize,
		Status:        r.Status,
	}
}

func (s *reservationService) Create(ctx context.Context, input ReservationInput) (*models.Reservation, error) {
	if page.IsLargeParty(input.PartySize) {
		return nil, notice(ErrLargeParty, page.LargePartyMessage(s.phone))
	}

	verr := NewValidationError()
	check := func(field, value string, c page.Constraints) {
		if res := page.CheckValue(value, c); !res.Valid {
			verr.Add(field, res.Message)
		}
	}
	check("guest_name", input.GuestName, page.Constraints{Required: true})
	check("guest_email", input.GuestEmail, page.Constraints{Required: true, Type: "email"})
	check("guest_phone", input.GuestPhone, page.Constraints{Required: true, Type: "tel"})
	check("reservation_time", input.Time, page.Constraints{Required: true})
	check("party_size", input.PartySize, page.Constraints{
		Required: true,
		Type:     "number",
		Min:      strconv.Itoa(MinPartySize),
		Max:      strconv.Itoa(MaxPartySize),
	})

	now := s.hours.Now()
	if strings.TrimSpace(input.Date) == "" {
		verr.Add("reservation_date", page.MsgRequired)
	} else if res := page.CheckReservationDate(input.Date, now); !res.Valid {
		verr.Add("reservation_date", res.Message)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	day, _ := time.ParseInLocation(page.DateLayout, strings.TrimSpace(input.Date), s.hours.Location())
	at, err := time.Parse(timeLayout, strings.TrimSpace(input.Time))
	if err != nil {
		verr.Add("reservation_time", page.MsgInvalid)
		return nil, verr
	}
	when := time.Date(day.Year(), day.Month(), day.Day(), at.Hour(), at.Minute(), 0, 0, s.hours.Location())
	if !s.hours.IsOpen(when) {
		msg := fmt.Sprintf("Our %s hours are %s. Please select a time within these hours.",
			DayKind(when), s.hours.HoursText(when))
		return nil, notice(ErrOutsideBusinessHours, msg)
	}

	party, err := strconv.Atoi(strings.TrimSpace(input.PartySize))
	if err != nil {
		verr.Add("party_size", page.MsgInvalid)
		return nil, verr
	}
	r := &models.Reservation{
		GuestName:       strings.TrimSpace(input.GuestName),
		GuestEmail:      strings.TrimSpace(input.GuestEmail),
		GuestPhone:      strings.TrimSpace(input.GuestPhone),
		ReservationDate: day,
		ReservationTime: when.Format(timeLayout),
		PartySize:       party,
		Status:          string(models.ReservationPending),
		SpecialRequests: strings.TrimSpace(input.SpecialRequests),
	}
	if err := s.repo.Create(r); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	log.Info().Uint("reservation_id", r.ID).Int("party_size", r.PartySize).
		Str("date", input.Date).Str("time", r.ReservationTime).Msg("reservation created")

	s.publish(ctx, events.ReservationCreated, newReservationEvent(r))
	return r, nil
}

func (s *reservationService) publish(ctx context.Context, key string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key, payload); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Msg("failed to publish event")
	}
}

func (s *reservationService) List() ([]models.Reservation, error) {
	return s.repo.List()
}

func (s *reservationService) ListByEmail(email string) ([]models.Reservation, error) {
	return s.repo.GetByEmail(strings.TrimSpace(email))
}

func (s *reservationService) UpdateStatus(ctx context.Context, id uint, status, notes string) (*models.Reservation, error) {
	status = page.NormalizeStatus(status)
	if !models.IsReservationStatus(status) {
		return nil, ErrInvalidStatus
	}
	r, err := s.repo.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	r.Status = status
	if notes = strings.TrimSpace(notes); notes != "" {
		r.AdminNotes = notes
	}
	if err := s.repo.Update(r); err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", notFound(err))
	}
	log.Info().Uint("reservation_id", id).Str("status", status).Msg("reservation status updated")

	s.publish(ctx, events.ReservationStatus, newReservationEvent(r))
	if s.whatsapp != nil {
		s.whatsapp.NotifyReservationStatus(ctx, r)
	}
	return r, nil
}
