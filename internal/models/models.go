package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

type User struct {
	ID            string    `gorm:"primaryKey"           json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null"             json:"-"`
	FirstName     string    `gorm:"not null"             json:"first_name"`
	LastName      string    `gorm:"not null"             json:"last_name"`
	Role          string    `gorm:"not null"             json:"role"`
	EmailVerified bool      `gorm:"default:false"        json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RefreshToken stores a sha256 digest of the signed token, never the raw
// string. ExpiresAt duplicates the claim as a unix timestamp so expiry can
// be checked without re-verifying the signature.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	TokenHash string    `gorm:"uniqueIndex;not null" json:"-"`
	JTI       string    `gorm:"uniqueIndex;not null" json:"jti"`
	UserID    string    `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64     `gorm:"not null"             json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Venue struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"not null"                 json:"name"`
	Address  string `gorm:"not null"                 json:"address"`
	City     string `gorm:"index;not null"           json:"city"`
	Capacity uint   `gorm:"not null"                 json:"capacity"`
}

type Event struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Title          string    `gorm:"not null"                  json:"title"`
	Description    string    `json:"description"`
	VenueID        uint      `gorm:"index;not null"            json:"venue_id"`
	OrganizerID    string    `gorm:"index;not null"            json:"organizer_id"`
	StartsAt       time.Time `gorm:"not null"                  json:"starts_at"`
	PriceCents     int64     `gorm:"not null"                  json:"price_cents"`
	SeatsTotal     uint      `gorm:"not null"                  json:"seats_total"`
	SeatsAvailable uint      `gorm:"not null"                  json:"seats_available"`
	Published      bool      `gorm:"default:false"             json:"published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

const (
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Reference   string    `gorm:"uniqueIndex;not null"      json:"reference"`
	UserID      string    `gorm:"index;not null"            json:"user_id"`
	EventID     uint      `gorm:"index;not null"            json:"event_id"`
	Quantity    uint      `gorm:"not null;check:quantity>0" json:"quantity"`
	AmountCents int64     `gorm:"not null"                  json:"amount_cents"`
	Status      string    `gorm:"not null"                  json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Page struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug      string    `gorm:"uniqueIndex;not null"     json:"slug"`
	Title     string    `gorm:"not null"                 json:"title"`
	Body      string    `json:"body"`
	Published bool      `gorm:"default:false"            json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Setting struct {
	Key       string    `gorm:"primaryKey"    json:"key"`
	Value     string    `json:"value"`
	Public    bool      `gorm:"default:false" json:"public"`
	UpdatedAt time.Time `json:"updated_at"`
}
