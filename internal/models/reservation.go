package models

import (
	"time"
)

type Reservation struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	GuestName       string    `json:"guest_name" gorm:"not null;size:100"`
	GuestEmail      string    `json:"guest_email" gorm:"size:120;index"`
	GuestPhone      string    `json:"guest_phone" gorm:"size:20"`
	ReservationDate time.Time `json:"reservation_date" gorm:"type:date;not null;index"`
	ReservationTime string    `json:"reservation_time" gorm:"size:5;not null"` // HH:MM
	PartySize       int       `json:"party_size" gorm:"not null"`
	Status          string    `json:"status" gorm:"not null;size:50;default:'pending';index"`
	SpecialRequests string    `json:"special_requests,omitempty" gorm:"type:text"`
	AdminNotes      string    `json:"admin_notes,omitempty" gorm:"type:text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCancelled ReservationStatus = "cancelled"
)

func IsReservationStatus(s string) bool {
	switch ReservationStatus(s) {
	case ReservationPending, ReservationApproved, ReservationRejected, ReservationCancelled:
		return true
	}
	return false
}
