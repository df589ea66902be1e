package booking

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/pkg/logger"
	"github.com/servicehub/booking-api/internal/pkg/metrics"
)

// ListQuery selects a provider's bookings. A nil StatusFilter means all statuses.
type ListQuery struct {
	ProviderID   int64
	StatusFilter *Status
}

// Counterpart is the other party shown on a listing entry.
type Counterpart struct {
	ID        int64
	Name      string
	Phone     string
	AvatarURL string
	Resolved  bool
}

// BookingView is one rendered listing entry.
type BookingView struct {
	Booking           Booking
	StatusLabel       string
	StatusClass       string
	DisplayedAmount   decimal.Decimal
	CurrencyCode      string
	Precision         int32
	FormattedAmount   string
	Reason            *string
	Counterpart       Counterpart
	Actions           []Action
	// ReasonRequired is the subset of Actions that must carry a reason.
	ReasonRequired    []Action
	ChatEnabled       bool
	ServiceImageURL   string
	ServicePreviewURL string
}

// Listing is a finite, restartable sequence of views. Rows are fetched once;
// views are built on each iteration.
type Listing struct {
	rows   []Booking
	viewer profile.Viewer
	svc    *Service
}

// List returns the provider's bookings rendered for viewer, in storage order.
func (s *Service) List(ctx context.Context, q ListQuery, viewer profile.Viewer) (*Listing, error) {
	if q.StatusFilter != nil {
		if !q.StatusFilter.Valid() {
			return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(*q.StatusFilter))
		}
		if !q.StatusFilter.Filterable() {
			return nil, fmt.Errorf("%w: %d", ErrInvalidFilter, int(*q.StatusFilter))
		}
	}

	rows, err := s.repo.ListByProvider(ctx, q.ProviderID, q.StatusFilter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return &Listing{rows: rows, viewer: viewer, svc: s}, nil
}

// Len is the number of entries.
func (l *Listing) Len() int { return len(l.rows) }

// Window returns the entries in [offset, offset+limit).
func (l *Listing) Window(offset, limit int) *Listing {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.rows) {
		offset = len(l.rows)
	}
	end := len(l.rows)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return &Listing{rows: l.rows[offset:end], viewer: l.viewer, svc: l.svc}
}

// All yields each view. A conversion failure is yielded once and ends the sequence.
func (l *Listing) All(ctx context.Context) iter.Seq2[BookingView, error] {
	return func(yield func(BookingView, error) bool) {
		for i := range l.rows {
			v, err := l.svc.view(ctx, &l.rows[i], l.viewer)
			if err != nil {
				yield(BookingView{}, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (s *Service) view(ctx context.Context, b *Booking, viewer profile.Viewer) (BookingView, error) {
	label, err := Label(int(b.Status))
	if err != nil {
		return BookingView{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	class, _ := PresentationClass(int(b.Status))

	displayed, err := s.normalizer.Normalize(b.Amount, b.CurrencyCode, viewer.CurrencyCode)
	if err != nil {
		return BookingView{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	formatted, err := s.normalizer.Format(displayed, viewer.CurrencyCode)
	if err != nil {
		return BookingView{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}
	precision, err := s.normalizer.Precision(viewer.CurrencyCode)
	if err != nil {
		return BookingView{}, fmt.Errorf("booking %d: %w", b.ID, err)
	}

	actions := s.AvailableActions(b, viewer)
	var needReason []Action
	for _, a := range actions {
		if s.engine.RequiresReason(b.Status, a) {
			needReason = append(needReason, a)
		}
	}

	return BookingView{
		Booking:           *b,
		StatusLabel:       label,
		StatusClass:       class,
		DisplayedAmount:   displayed,
		CurrencyCode:      viewer.CurrencyCode,
		Precision:         precision,
		FormattedAmount:   formatted,
		Reason:            b.ReasonText(),
		Counterpart:       s.counterpart(ctx, b, viewer),
		Actions:           actions,
		ReasonRequired:    needReason,
		ChatEnabled:       b.Status == StatusInProgress && b.IsParty(viewer.Role, viewer.UserID),
		ServiceImageURL:   profile.AssetURL(s.assets.BaseURL, b.ServiceImage, s.assets.DefaultServiceImagePath),
		ServicePreviewURL: s.previewURL(b),
	}, nil
}

// previewURL links to the public service page: a dashed title slug plus the
// md5 of the service id, which is what the web frontend resolves.
func (s *Service) previewURL(b *Booking) string {
	slug := url.PathEscape(strings.ReplaceAll(b.ServiceTitle, " ", "-"))
	sum := md5.Sum([]byte(strconv.FormatInt(b.ServiceID, 10)))
	return strings.TrimRight(s.assets.BaseURL, "/") + "/service-preview/" + slug + "?sid=" + hex.EncodeToString(sum[:])
}

// counterpart never fails; unresolved profiles render as placeholders. The
// phone number is only shown to the booking's own parties.
func (s *Service) counterpart(ctx context.Context, b *Booking, viewer profile.Viewer) Counterpart {
	p, err := s.profiles.GetProfile(ctx, b.UserID)
	resolved := err == nil && p != nil
	if !resolved {
		event := logger.FromContext(ctx).Warn().
			Int64("booking_id", b.ID).
			Int64("user_id", b.UserID)
		if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
			event = event.Err(err)
		}
		event.Msg("Counterpart profile unavailable, using placeholder")
		metrics.RecordProfileFallback()

		fallback := profile.Unresolved(b.UserID)
		p = &fallback
	}

	phone := profile.Placeholder
	if b.IsParty(viewer.Role, viewer.UserID) {
		phone = orPlaceholder(p.Phone)
	}

	return Counterpart{
		ID:        p.ID,
		Name:      orPlaceholder(p.Name),
		Phone:     phone,
		AvatarURL: p.AvatarURL(s.assets.BaseURL, s.assets.DefaultAvatarPath),
		Resolved:  resolved,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return profile.Placeholder
	}
	return s
}
