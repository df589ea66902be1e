package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/servicehub/booking-api/internal/domain/currency"
	"github.com/servicehub/booking-api/internal/domain/profile"
	"github.com/servicehub/booking-api/internal/middleware"
	"github.com/servicehub/booking-api/internal/pkg/errorhandler"
	"github.com/servicehub/booking-api/internal/pkg/response"
	"github.com/servicehub/booking-api/internal/pkg/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 100000
)

// ViewerResolver resolves who is looking at a listing.
type ViewerResolver interface {
	ResolveViewer(ctx context.Context, role profile.Role, id int64) (profile.Viewer, error)
}

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
	viewers ViewerResolver
}

// NewHandler creates booking handler
func NewHandler(service *Service, viewers ViewerResolver) *Handler {
	return &Handler{service: service, viewers: viewers}
}

// Transition handles POST /api/v1/bookings/{id}/transitions
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	var body TransitionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&body); errs != nil {
		errorhandler.LogValidationError(ctx, errs)
		response.ValidationError(w, errs)
		return
	}

	role := profile.ParseRole(middleware.GetRole(ctx))
	if body.ActorRole != "" && profile.ParseRole(body.ActorRole) != role {
		response.Error(w, http.StatusForbidden, "UNAUTHORIZED_ACTOR", "actor_role does not match the authenticated account")
		return
	}

	result, err := h.service.Transition(ctx, TransitionRequest{
		BookingID: id,
		Action:    Action(body.Action),
		ActorRole: role,
		ActorID:   middleware.GetUserID(ctx),
		Reason:    body.Reason,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	response.OK(w, TransitionResponse{
		Booking: BookingResponseFromEntity(result.Booking),
		Event:   EventResponseFromEvent(result.Event),
	})
}

// ListProviderBookings handles GET /api/v1/providers/{id}/bookings
func (h *Handler) ListProviderBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	providerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || providerID <= 0 {
		response.BadRequest(w, "Invalid provider ID")
		return
	}

	filter, err := ParseFilter(r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, limit := pagination(r)

	viewer, err := h.viewers.ResolveViewer(ctx, profile.ParseRole(middleware.GetRole(ctx)), middleware.GetUserID(ctx))
	if err != nil {
		errorhandler.HandleInternal(ctx, w, err)
		return
	}

	listing, err := h.service.List(ctx, ListQuery{ProviderID: providerID, StatusFilter: filter}, viewer)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]BookingViewResponse, 0, limit)
	for v, err := range listing.Window((page-1)*limit, limit).All(ctx) {
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		items = append(items, ViewResponseFromView(v))
	}

	response.WithMeta(w, items, response.NewMeta(listing.Len(), page, limit))
}

// pagination reads page and limit, clamped so the offset cannot overflow.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	page = min(max(page, 1), maxPage)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	switch {
	case err != nil || limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return page, limit
}

// Statuses handles GET /api/v1/bookings/statuses
func (h *Handler) Statuses(w http.ResponseWriter, r *http.Request) {
	entries := Statuses()
	out := StatusesResponse{
		Statuses: make([]StatusResponse, 0, len(entries)),
		Filters:  FilterableStatuses(),
	}
	for _, e := range entries {
		out.Statuses = append(out.Statuses, StatusResponse{
			Code:       e.Code,
			Name:       e.Name,
			Label:      e.Label,
			Class:      e.Class,
			Terminal:   e.Terminal,
			Filterable: e.Filterable,
		})
	}
	response.OK(w, out)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrContention):
		response.Retryable(w, "CONTENTION", err.Error(), 1)
	case errors.Is(err, ErrIllegalTransition):
		details := map[string]string{}
		var te *TransitionError
		if errors.As(err, &te) {
			details["current_status"] = strconv.Itoa(int(te.From))
			details["current_status_name"] = te.From.Name()
			details["action"] = string(te.Action)
		}
		response.ErrorWithDetails(w, http.StatusConflict, "ILLEGAL_TRANSITION", "Transition is not allowed from the current status", details)
	case errors.Is(err, ErrUnauthorized):
		response.Error(w, http.StatusForbidden, "UNAUTHORIZED_ACTOR", ErrUnauthorized.Error())
	case errors.Is(err, ErrMissingReason):
		response.ErrorWithDetails(w, http.StatusUnprocessableEntity, "MISSING_REASON", ErrMissingReason.Error(),
			map[string]string{"reason": "This field is required"})
	case errors.Is(err, ErrInvalidFilter):
		response.Error(w, http.StatusBadRequest, "INVALID_FILTER", err.Error())
	case errors.Is(err, ErrUnknownStatus):
		response.Error(w, http.StatusBadRequest, "UNKNOWN_STATUS", err.Error())
	case errors.Is(err, currency.ErrUnknownCurrency):
		response.Unprocessable(w, "UNKNOWN_CURRENCY", err.Error())
	default:
		errorhandler.HandleInternal(r.Context(), w, err)
	}
}
