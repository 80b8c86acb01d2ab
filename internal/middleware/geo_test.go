package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestResolveCity(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CityLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-City", " Pune ")
				r.Header.Set("CF-IPCity", "Delhi")
			},
			resolver: func(ip string) (string, error) {
				t.Fatalf("lookup must not run when a header hint exists")
				return "", nil
			},
			want: "Pune",
		},
		{
			name: "cdn header",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCity", "Delhi")
			},
			want: "Delhi",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "Kochi", nil
			},
			want: "Kochi",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
		{
			name: "no hints",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := ResolveCity(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("ResolveCity() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGeoStoresCityInContext(t *testing.T) {
	var got string
	handler := Geo(func(string) (string, error) { return "Chennai", nil })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = CityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/donors?near=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Chennai" {
		t.Fatalf("CityFromContext() = %q, want %q", got, "Chennai")
	}

	if v := CityFromContext(req.Context()); v != "" {
		t.Fatalf("CityFromContext() on bare context = %q, want empty", v)
	}
}
