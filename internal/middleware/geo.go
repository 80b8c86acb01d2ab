package middleware

import (
	"context"
	"net/http"
	"strings"
)

type cityContextKey struct{}

// CityKey holds the caller's best-effort city name.
var CityKey = cityContextKey{}

// CityLookup resolves a city name for an IP address.
type CityLookup func(ip string) (string, error)

// Geo stores the caller's city in the request context. It is used to
// pre-fill the city filter of "near me" donor searches.
func Geo(lookup CityLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if city := ResolveCity(r, lookup); city != "" {
				r = r.WithContext(context.WithValue(r.Context(), CityKey, city))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ResolveCity prefers an explicit city header hint and falls back to an IP lookup.
func ResolveCity(r *http.Request, lookup CityLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-City", "X-Appengine-City", "CF-IPCity"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return val
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if city, err := lookup(ip); err == nil {
				return strings.TrimSpace(city)
			}
		}
	}
	return ""
}

// CityFromContext returns the city stored by Geo, or "".
func CityFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CityKey).(string); ok {
		return v
	}
	return ""
}
