package booking

import "time"

// TransitionBody is the JSON body of POST /bookings/{id}/transitions.
type TransitionBody struct {
	Action    string `json:"action" validate:"booking_action"`
	Reason    string `json:"reason" validate:"max=500"`
	ActorRole string `json:"actor_role,omitempty" validate:"actor_role"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID           int64   `json:"id"`
	ServiceID    int64   `json:"service_id"`
	ServiceTitle string  `json:"service_title"`
	ProviderID   int64   `json:"provider_id"`
	UserID       int64   `json:"user_id"`
	Status       Status  `json:"status"`
	StatusName   string  `json:"status_name"`
	Amount       string  `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
	ServiceDate  string  `json:"service_date"`
	FromTime     string  `json:"from_time"`
	ToTime       string  `json:"to_time"`
	Location     string  `json:"location"`
	Reason       *string `json:"reason,omitempty"`
	UpdatedAt    string  `json:"updated_at"`
}

// EventResponse represents an emitted status change
type EventResponse struct {
	EventID    string  `json:"event_id"`
	From       Status  `json:"from"`
	To         Status  `json:"to"`
	Action     Action  `json:"action"`
	ActorRole  string  `json:"actor_role"`
	Reason     *string `json:"reason,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

// TransitionResponse is returned after a successful transition
type TransitionResponse struct {
	Booking BookingResponse `json:"booking"`
	Event   EventResponse   `json:"event"`
}

// CounterpartResponse is the other party of a booking
type CounterpartResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
}

// BookingViewResponse is one entry of the provider booking list
type BookingViewResponse struct {
	ID                int64               `json:"id"`
	ServiceID         int64               `json:"service_id"`
	ServiceTitle      string              `json:"service_title"`
	ServiceImageURL   string              `json:"service_image_url"`
	ServicePreviewURL string              `json:"service_preview_url"`
	Status            Status              `json:"status"`
	StatusLabel       string              `json:"status_label"`
	StatusClass       string              `json:"status_class"`
	ServiceDate       string              `json:"service_date"`
	FromTime          string              `json:"from_time"`
	ToTime            string              `json:"to_time"`
	Location          string              `json:"location"`
	Amount            string              `json:"amount"`
	OriginalCurrency  string              `json:"original_currency"`
	DisplayedAmount   string              `json:"displayed_amount"`
	CurrencyCode      string              `json:"currency_code"`
	FormattedAmount   string              `json:"formatted_amount"`
	Reason            *string             `json:"reason,omitempty"`
	Counterpart       CounterpartResponse `json:"counterpart"`
	Actions           []Action            `json:"actions"`
	ReasonRequired    []Action            `json:"reason_required"`
	ChatEnabled       bool                `json:"chat_enabled"`
}

// StatusResponse describes a registry entry
type StatusResponse struct {
	Code       Status `json:"code"`
	Name       string `json:"name"`
	Label      string `json:"label"`
	Class      string `json:"class"`
	Terminal   bool   `json:"terminal"`
	Filterable bool   `json:"filterable"`
}

// StatusesResponse lists the registry and the filter values in display order
type StatusesResponse struct {
	Statuses []StatusResponse `json:"statuses"`
	Filters  []Status         `json:"filters"`
}

const dateLayout = "2006-01-02"

// BookingResponseFromEntity converts a booking
func BookingResponseFromEntity(b *Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ServiceID:    b.ServiceID,
		ServiceTitle: b.ServiceTitle,
		ProviderID:   b.ProviderID,
		UserID:       b.UserID,
		Status:       b.Status,
		StatusName:   b.Status.Name(),
		Amount:       b.Amount.StringFixed(2),
		CurrencyCode: b.CurrencyCode,
		ServiceDate:  b.ServiceDate.Format(dateLayout),
		FromTime:     b.FromTime,
		ToTime:       b.ToTime,
		Location:     b.Location,
		Reason:       b.ReasonText(),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}

// EventResponseFromEvent converts an event
func EventResponseFromEvent(e BookingStatusChanged) EventResponse {
	return EventResponse{
		EventID:    e.EventID.String(),
		From:       e.From,
		To:         e.To,
		Action:     e.Action,
		ActorRole:  e.ActorRole.String(),
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt.Format(time.RFC3339),
	}
}

// ViewResponseFromView converts a listing entry
func ViewResponseFromView(v BookingView) BookingViewResponse {
	return BookingViewResponse{
		ID:                v.Booking.ID,
		ServiceID:         v.Booking.ServiceID,
		ServiceTitle:      v.Booking.ServiceTitle,
		ServiceImageURL:   v.ServiceImageURL,
		ServicePreviewURL: v.ServicePreviewURL,
		Status:            v.Booking.Status,
		StatusLabel:       v.StatusLabel,
		StatusClass:       v.StatusClass,
		ServiceDate:       v.Booking.ServiceDate.Format(dateLayout),
		FromTime:          v.Booking.FromTime,
		ToTime:            v.Booking.ToTime,
		Location:          v.Booking.Location,
		Amount:            v.Booking.Amount.String(),
		OriginalCurrency:  v.Booking.CurrencyCode,
		DisplayedAmount:   v.DisplayedAmount.StringFixedBank(v.Precision),
		CurrencyCode:      v.CurrencyCode,
		FormattedAmount:   v.FormattedAmount,
		Reason:            v.Reason,
		Counterpart: CounterpartResponse{
			ID:        v.Counterpart.ID,
			Name:      v.Counterpart.Name,
			Phone:     v.Counterpart.Phone,
			AvatarURL: v.Counterpart.AvatarURL,
		},
		Actions:        orEmpty(v.Actions),
		ReasonRequired: orEmpty(v.ReasonRequired),
		ChatEnabled:    v.ChatEnabled,
	}
}

func orEmpty(actions []Action) []Action {
	if actions == nil {
		return []Action{}
	}
	return actions
}
