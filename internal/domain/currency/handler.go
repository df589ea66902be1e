package currency

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/servicehub/booking-api/internal/pkg/errorhandler"
	"github.com/servicehub/booking-api/internal/pkg/response"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	catalog    *Catalog
	normalizer *Normalizer
}

// NewHandler creates currency handler
func NewHandler(catalog *Catalog, normalizer *Normalizer) *Handler {
	return &Handler{catalog: catalog, normalizer: normalizer}
}

// Routes returns the currency router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/convert", h.Convert)
	return r
}

// List handles GET /api/v1/currencies
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows := h.catalog.List()
	items := make([]CurrencyResponse, 0, len(rows))
	for _, c := range rows {
		items = append(items, toResponse(c))
	}
	response.OK(w, items)
}

// Convert handles GET /api/v1/currencies/convert?amount=&from=&to=
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err == nil {
		err = CheckAmount(amount)
	}
	if err != nil {
		response.BadRequest(w, ErrInvalidAmount.Error())
		return
	}
	from, to := NormalizeCode(q.Get("from")), NormalizeCode(q.Get("to"))

	converted, err := h.normalizer.Normalize(amount, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	formatted, err := h.normalizer.Format(converted, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	precision, _ := h.catalog.Precision(to)

	response.OK(w, ConversionResponse{
		Amount:    amount.String(),
		From:      from,
		To:        to,
		Converted: converted.StringFixedBank(precision),
		Formatted: formatted,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnknownCurrency) {
		response.Unprocessable(w, "UNKNOWN_CURRENCY", err.Error())
		return
	}
	errorhandler.HandleInternal(r.Context(), w, err)
}
