package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/servicehub/booking-api/internal/pkg/logger"
	"github.com/servicehub/booking-api/internal/pkg/response"
)

// RateLimit limits requests per authenticated actor (or per client address when anonymous).
// rate uses the limiter format, e.g. "30-M". A nil client selects an in-process store.
func RateLimit(client *redis.Client, routeID, rate string) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}

	prefix := "rate_limiter:" + routeID
	var store limiter.Store
	if client != nil {
		store, err = redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   prefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store for %s: %w", routeID, err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	mw := stdlib.NewMiddleware(
		limiter.New(store, parsed),
		stdlib.WithKeyGetter(rateLimitKey),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.FromContext(r.Context()).Warn().
				Int64("user_id", GetUserID(r.Context())).
				Str("route", routeID).
				Msg("Rate limit exceeded")
			response.TooManyRequests(w)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Error().Err(err).Str("route", routeID).Msg("Rate limiter failed")
			response.InternalError(w)
		}),
	)
	return mw.Handler, nil
}

func rateLimitKey(r *http.Request) string {
	if id := GetUserID(r.Context()); id != 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return "ip:" + r.RemoteAddr
}
