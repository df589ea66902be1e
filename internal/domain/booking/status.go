package booking

import (
	"fmt"
	"strconv"
	"strings"
)

// Status is the lifecycle state of a booking. Codes are persisted as-is.
type Status int

const (
	StatusPending             Status = 1
	StatusInProgress          Status = 2
	StatusCompleteRequested   Status = 3
	StatusAccepted            Status = 4 // reserved, no transition reaches it
	StatusRejectedByUser      Status = 5
	StatusCompletedAccepted   Status = 6
	StatusCancelledByProvider Status = 7
)

type statusInfo struct {
	name  string
	label string
	class string
}

var registry = map[Status]statusInfo{
	StatusPending:             {"Pending", "Pending", "bg-warning"},
	StatusInProgress:          {"InProgress", "Inprogress", "bg-primary"},
	StatusCompleteRequested:   {"CompleteRequested", "Complete Request sent to User", "bg-success"},
	StatusAccepted:            {"Accepted", "Accepted", "bg-success"},
	StatusRejectedByUser:      {"RejectedByUser", "Rejected by User", "bg-danger"},
	StatusCompletedAccepted:   {"CompletedAccepted", "Completed Accepted", "bg-success"},
	StatusCancelledByProvider: {"CancelledByProvider", "Cancelled by Provider", "bg-danger"},
}

// filterOrder is the order statuses are offered as listing filters.
var filterOrder = []Status{
	StatusPending,
	StatusInProgress,
	StatusCompleteRequested,
	StatusRejectedByUser,
	StatusCancelledByProvider,
	StatusCompletedAccepted,
}

// ParseStatus validates a raw status code.
func ParseStatus(code int) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownStatus, code)
	}
	return s, nil
}

// Label returns the viewer-facing label for code.
func Label(code int) (string, error) {
	s, err := ParseStatus(code)
	if err != nil {
		return "", err
	}
	return registry[s].label, nil
}

// PresentationClass returns the badge class for code.
func PresentationClass(code int) (string, error) {
	s, err := ParseStatus(code)
	if err != nil {
		return "", err
	}
	return registry[s].class, nil
}

func (s Status) Valid() bool {
	_, ok := registry[s]
	return ok
}

func (s Status) Name() string {
	if info, ok := registry[s]; ok {
		return info.name
	}
	return "Unknown(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) String() string { return s.Name() }

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejectedByUser, StatusCompletedAccepted, StatusCancelledByProvider:
		return true
	}
	return false
}

// RequiresReason reports whether a booking in s must carry a reason.
func (s Status) RequiresReason() bool {
	return s == StatusRejectedByUser || s == StatusCancelledByProvider
}

// Filterable reports whether s may be used to filter a listing.
func (s Status) Filterable() bool {
	return s.Valid() && s != StatusAccepted
}

// FilterableStatuses returns the selectable filter values in display order.
func FilterableStatuses() []Status {
	out := make([]Status, len(filterOrder))
	copy(out, filterOrder)
	return out
}

// ParseFilter parses a listing filter. An empty value means no filter.
func ParseFilter(raw string) (*Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	s, err := ParseStatus(code)
	if err != nil {
		return nil, err
	}
	if !s.Filterable() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFilter, code)
	}
	return &s, nil
}

// StatusInfo describes one registry entry.
type StatusInfo struct {
	Code       Status
	Name       string
	Label      string
	Class      string
	Terminal   bool
	Filterable bool
}

// Statuses returns every registry entry ordered by code.
func Statuses() []StatusInfo {
	out := make([]StatusInfo, 0, len(registry))
	for s := StatusPending; s <= StatusCancelledByProvider; s++ {
		info := registry[s]
		out = append(out, StatusInfo{
			Code:       s,
			Name:       info.name,
			Label:      info.label,
			Class:      info.class,
			Terminal:   s.IsTerminal(),
			Filterable: s.Filterable(),
		})
	}
	return out
}
