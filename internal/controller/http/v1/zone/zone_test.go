package zone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/repository/postgres"
	"clocker/backend/internal/repository/postgres/zone"

	"github.com/gin-gonic/gin"
)

type fakeZones struct {
	zones map[int]entity.Zone
}

func (f fakeZones) GetList(context.Context, zone.Filter) ([]entity.Zone, int, error) {
	return nil, 0, nil
}

func (f fakeZones) GetActive(context.Context) ([]entity.Zone, error) { return nil, nil }

func (f fakeZones) GetByCode(_ context.Context, code string) (entity.Zone, error) {
	for _, z := range f.zones {
		if z.Code == code {
			return z, nil
		}
	}
	return entity.Zone{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
}

func (f fakeZones) GetDetailById(_ context.Context, id int) (entity.Zone, error) {
	z, ok := f.zones[id]
	if !ok {
		return entity.Zone{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	return z, nil
}

func (f fakeZones) Create(context.Context, zone.CreateRequest) (entity.Zone, error) {
	return entity.Zone{}, nil
}

func (f fakeZones) UpdateColumns(_ context.Context, req zone.UpdateRequest) (string, error) {
	return f.zones[req.ID].Code, nil
}

func (f fakeZones) Delete(_ context.Context, id int) (string, error) {
	return f.zones[id].Code, nil
}

type recordingCache struct {
	codes []string
}

func (r *recordingCache) Invalidate(_ context.Context, codes ...string) {
	r.codes = append(r.codes, codes...)
}

func newApp(cache Cache) *web.App {
	gin.SetMode(gin.TestMode)

	zones := fakeZones{zones: map[int]entity.Zone{
		1: {ID: 1, Code: "OFFICE", StartTime: "08:00", EndTime: "17:00", Days: []string{"MONDAY", "TUESDAY"}, Active: true},
	}}
	zc := NewController(zones, cache, time.UTC)

	app := web.NewApp(nil)
	app.Get("/zone/:id/check", zc.Check)
	app.Patch("/zone/:id", zc.UpdateColumns)
	app.Delete("/zone/:id", zc.Delete)
	return app
}

func TestCheck(t *testing.T) {
	app := newApp(&recordingCache{})

	tests := []struct {
		name   string
		path   string
		status int
		valid  bool
	}{
		{"inside window", "/zone/1/check?at=2024-01-01T09:00:00Z", http.StatusOK, true},
		{"end boundary", "/zone/1/check?at=2024-01-01T17:00:00Z", http.StatusOK, true},
		{"after window", "/zone/1/check?at=2024-01-01T17:00:01Z", http.StatusOK, false},
		{"wrong day", "/zone/1/check?at=2024-01-03T09:00:00Z", http.StatusOK, false},
		{"bad time", "/zone/1/check?at=monday", http.StatusBadRequest, false},
		{"unknown zone", "/zone/9/check?at=2024-01-01T09:00:00Z", http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}

			var resp struct {
				Data struct {
					Valid  bool   `json:"valid"`
					Reason string `json:"reason"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Data.Valid != tt.valid {
				t.Fatalf("expected valid=%v, got %+v", tt.valid, resp.Data)
			}
			if !tt.valid && resp.Data.Reason == "" {
				t.Fatal("expected a reason for a rejected instant")
			}
		})
	}
}

func TestUpdateAndDeleteInvalidateCache(t *testing.T) {
	cache := &recordingCache{}
	app := newApp(cache)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPatch, "/zone/1", strings.NewReader(`{"name":"Main office"}`))
	r.Header.Set("Content-Type", "application/json")
	app.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/zone/1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if len(cache.codes) != 2 || cache.codes[0] != "OFFICE" || cache.codes[1] != "OFFICE" {
		t.Fatalf("expected OFFICE to be invalidated twice, got %v", cache.codes)
	}
}
