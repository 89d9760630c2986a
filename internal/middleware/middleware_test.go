package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	a, err := auth.New("secret", time.Hour, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	admin, refresh, err := a.GenerateTokens(1, auth.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	clock, _, err := a.GenerateTokens(2, auth.RoleClock)
	if err != nil {
		t.Fatal(err)
	}

	app := web.NewApp(nil, Logger())
	app.Get("/admin", func(c *web.Context) error {
		claims := c.Ctx.Value(auth.Key).(auth.Claims)
		return c.Respond(claims.UserId, http.StatusOK)
	}, Authenticate(a, auth.RoleAdmin))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Token " + admin, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"wrong role", "Bearer " + clock, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Fatal("request id header missing")
			}
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(CORS([]string{"https://clock.example.com"}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	r.Header.Set("Origin", "https://clock.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, r)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://clock.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
