package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a back-office account. Admins and customers never share a login.
type Admin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"unique;not null;size:80"`
	PasswordHash string    `json:"-" gorm:"not null;size:256"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Customer struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Email        string         `json:"email" gorm:"unique;not null;size:120"`
	PasswordHash string         `json:"-" gorm:"not null;size:256"`
	FullName     string         `json:"full_name" gorm:"not null;size:100"`
	Phone        string         `json:"phone" gorm:"size:20"`
	Address      string         `json:"address" gorm:"type:text"`
	City         string         `json:"city" gorm:"size:50"`
	PostalCode   string         `json:"postal_code" gorm:"size:10"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
