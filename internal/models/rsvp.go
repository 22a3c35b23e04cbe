package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RSVP struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	GuestName  string    `gorm:"not null" json:"guest_name"`
	GuestEmail string    `gorm:"not null" json:"guest_email"`
	GuestPhone *string   `json:"guest_phone"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RSVP) TableName() string {
	return "rsvps"
}

func (rsvp *RSVP) BeforeCreate(tx *gorm.DB) (err error) {
	if rsvp.ID == uuid.Nil {
		rsvp.ID = uuid.New()
	}
	return
}
