package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres/user"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type fakeUsers struct {
	byEmail map[string]entity.User
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return entity.User{}, web.NewRequestError(errors.New("user not found"), http.StatusUnauthorized)
	}
	return u, nil
}

func (f fakeUsers) GetById(_ context.Context, id int) (entity.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return entity.User{}, web.NewRequestError(errors.New("user not found"), http.StatusNotFound)
}

func newApp(t *testing.T) (*web.App, *auth.Auth) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := user.HashPassword("secret1")
	if err != nil {
		t.Fatal(err)
	}
	email, role := "ana@example.com", auth.RoleAdmin
	users := fakeUsers{byEmail: map[string]entity.User{
		email: {ID: 3, Email: &email, Password: &hash, Role: &role, Active: true},
	}}

	a, err := auth.New("key", time.Hour, 2*time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	ac := NewController(users, a)
	app := web.NewApp(nil)
	app.Post("/sign-in", ac.SignIn)
	app.Post("/refresh-token", ac.RefreshToken)
	return app, a
}

func post(app *web.App, path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)
	return w
}

type tokenResponse struct {
	Data struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		Role         string `json:"role"`
	} `json:"data"`
}

func TestSignIn(t *testing.T) {
	app, a := newApp(t)

	w := post(app, "/sign-in", `{"email":"ana@example.com","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp tokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	claims, err := a.ValidateToken(resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("access token rejected: %v", err)
	}
	if claims.UserId != 3 || resp.Data.Role != auth.RoleAdmin {
		t.Fatalf("unexpected claims %+v role %q", claims, resp.Data.Role)
	}

	w = post(app, "/refresh-token", `{"refresh_token":"`+resp.Data.RefreshToken+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = post(app, "/refresh-token", `{"refresh_token":"`+resp.Data.AccessToken+`"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("access token used as refresh: expected 401, got %d", w.Code)
	}
}

func TestSignInRejects(t *testing.T) {
	app, _ := newApp(t)

	for _, body := range []string{
		`{"email":"ana@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"secret1"}`,
	} {
		w := post(app, "/sign-in", body)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), errBadCredentials.Error()) {
			t.Fatalf("expected generic credentials error, got %s", w.Body.String())
		}
	}

	if w := post(app, "/sign-in", `{"email":"ana@example.com"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", w.Code)
	}
}
