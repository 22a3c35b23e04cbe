package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FeeTypeFree = "free"
	FeeTypePaid = "paid"
)

type Event struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID                uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name                  string     `gorm:"not null" json:"name"`
	OrganizationName      *string    `json:"organization_name"`
	Description           *string    `json:"description"`
	Category              []string   `gorm:"serializer:json" json:"category"`
	Location              *string    `json:"location"`
	EventDate             *time.Time `gorm:"type:date;index" json:"event_date"`
	EventTime             *string    `json:"event_time"`
	PosterURL             *string    `json:"poster_url"`
	RegistrationFeeType   string     `gorm:"not null;default:'free'" json:"registration_fee_type"`
	RegistrationFeeAmount *float64   `json:"registration_fee_amount"`
	MemberLimit           *int       `json:"member_limit"`
	IsUnlimited           bool       `gorm:"not null;default:true" json:"is_unlimited"`
	OrganiserName         *string    `json:"organiser_name"`
	OrganiserPhone        *string    `json:"organiser_phone"`
	OrganiserEmail        *string    `json:"organiser_email"`
	Status                Status     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	IsFeatured            bool       `gorm:"not null;default:false" json:"is_featured"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

// DeriveCapacity maps a raw member-limit form value onto the capacity pair.
// Invariant: IsUnlimited is true exactly when MemberLimit is nil, so a blank
// or non-positive limit means unlimited.
func DeriveCapacity(raw string) (*int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return nil, true
	}
	return &n, false
}

// DeriveFee maps raw fee form values onto the fee pair. The amount is non-nil
// only for paid events; unknown fee types fall back to free.
func DeriveFee(feeType, rawAmount string) (string, *float64) {
	if feeType != FeeTypePaid {
		return FeeTypeFree, nil
	}
	amount := 0.0
	if v, err := strconv.ParseFloat(strings.TrimSpace(rawAmount), 64); err == nil {
		amount = v
	}
	return FeeTypePaid, &amount
}

// ParseCategories splits a comma-delimited category string, trimming blanks.
func ParseCategories(csv string) []string {
	var categories []string
	for _, c := range strings.Split(csv, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			categories = append(categories, c)
		}
	}
	return categories
}
