package booking

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/servicehub/booking-api/internal/domain/profile"
)

// Booking is a reservation of a provider's service by a user.
// Amount and CurrencyCode are fixed at creation.
type Booking struct {
	ID           int64           `db:"id"`
	ServiceID    int64           `db:"service_id"`
	ServiceTitle string          `db:"service_title"`
	ServiceImage string          `db:"service_image"`
	ProviderID   int64           `db:"provider_id"`
	UserID       int64           `db:"user_id"`
	Status       Status          `db:"status"`
	Amount       decimal.Decimal `db:"amount"`
	CurrencyCode string          `db:"currency_code"`
	ServiceDate  time.Time       `db:"service_date"`
	FromTime     string          `db:"from_time"`
	ToTime       string          `db:"to_time"`
	Location     string          `db:"location"`
	Reason       sql.NullString  `db:"reason"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// ReasonText returns the reason when the status carries one.
func (b *Booking) ReasonText() *string {
	if !b.Status.RequiresReason() || !b.Reason.Valid {
		return nil
	}
	r := b.Reason.String
	return &r
}

// IsParty reports whether userID is the provider or the user of the booking, for role.
func (b *Booking) IsParty(role profile.Role, userID int64) bool {
	switch role {
	case profile.RoleProvider:
		return userID != 0 && userID == b.ProviderID
	case profile.RoleUser:
		return userID != 0 && userID == b.UserID
	}
	return false
}
