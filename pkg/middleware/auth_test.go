package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chauffeur-booking/pkg/utils"

	"go.uber.org/zap/zaptest"
)

func protected(t *testing.T, tokens *utils.TokenManager) (http.Handler, *string) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = utils.GetAdminFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return AdminJWT(tokens, zaptest.NewLogger(t))(next), &seen
}

func TestAdminJWT(t *testing.T) {
	tokens := utils.NewTokenManager(utils.AdminConfig{JWTSecret: "test-secret", ExpiryHours: 1})
	other := utils.NewTokenManager(utils.AdminConfig{JWTSecret: "other-secret", ExpiryHours: 1})

	valid, _, err := tokens.Generate("dispatch", time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	forged, _, _ := other.Generate("dispatch", time.Now())
	expired, _, _ := tokens.Generate("dispatch", time.Now().Add(-2*time.Hour))

	cases := []struct {
		name    string
		header  string
		query   string
		upgrade bool
		want    int
		user    string
	}{
		{name: "bearer header", header: "Bearer " + valid, want: http.StatusNoContent, user: "dispatch"},
		{name: "lowercase scheme", header: "bearer " + valid, want: http.StatusNoContent, user: "dispatch"},
		{name: "query token on websocket upgrade", query: valid, upgrade: true, want: http.StatusNoContent, user: "dispatch"},
		{name: "query token on plain request", query: valid, want: http.StatusUnauthorized},
		{name: "upgrade without token", upgrade: true, want: http.StatusUnauthorized},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, want: http.StatusUnauthorized},
		{name: "other secret", header: "Bearer " + forged, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, want: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, seen := protected(t, tokens)

			target := "/api/admin/bookings"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			if *seen != tc.user {
				t.Fatalf("admin in context = %q, want %q", *seen, tc.user)
			}
		})
	}
}
