package models

import (
	"time"
)

// Notification is an admin-facing note, created for every new order.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	OrderID   uint      `json:"order_id" gorm:"not null;index"`
	Message   string    `json:"message" gorm:"not null;size:255"`
	IsRead    bool      `json:"is_read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}
