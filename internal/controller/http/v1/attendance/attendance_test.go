package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/repository/postgres/attendance"

	"github.com/gin-gonic/gin"
)

type fakeAttendance struct {
	filters []attendance.Filter
}

func (f *fakeAttendance) GetList(_ context.Context, filter attendance.Filter) ([]attendance.GetListResponse, int, error) {
	f.filters = append(f.filters, filter)
	return []attendance.GetListResponse{}, 0, nil
}

func (f *fakeAttendance) GetDetailById(context.Context, string) (attendance.GetDetailByIdResponse, error) {
	return attendance.GetDetailByIdResponse{}, nil
}

func (f *fakeAttendance) Delete(context.Context, string) error { return nil }

func newApp(repo Attendance) *web.App {
	gin.SetMode(gin.TestMode)

	app := web.NewApp(nil)
	app.Get("/attendance", NewController(repo).GetList)
	return app
}

func TestGetListRejectsBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		fields []string
	}{
		{"bad from", "/attendance?from=01/04/2024", []string{"from"}},
		{"bad from and to", "/attendance?from=yesterday&to=2024-13-01", []string{"from", "to"}},
		{"bad open", "/attendance?open=maybe", []string{"open"}},
		{"bad limit", "/attendance?limit=ten", []string{"limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeAttendance{}
			w := httptest.NewRecorder()
			newApp(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if len(repo.filters) != 0 {
				t.Fatal("repository must not be queried on a bad request")
			}

			var resp web.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if len(resp.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %+v", tt.fields, resp.Fields)
			}
			for i, field := range tt.fields {
				if resp.Fields[i].Field != field {
					t.Fatalf("expected fields %v, got %+v", tt.fields, resp.Fields)
				}
			}
		})
	}
}

func TestGetListPassesFilter(t *testing.T) {
	repo := &fakeAttendance{}
	w := httptest.NewRecorder()
	newApp(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/attendance?person_id=P1&zone_code=OFFICE&from=2024-04-01&to=2024-04-30&open=true&page=2", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(repo.filters) != 1 {
		t.Fatalf("expected one repository call, got %d", len(repo.filters))
	}

	f := repo.filters[0]
	if f.PersonID == nil || *f.PersonID != "P1" || f.ZoneCode == nil || *f.ZoneCode != "OFFICE" {
		t.Fatalf("unexpected person or zone in %+v", f)
	}
	if f.From == nil || f.From.String() != "2024-04-01" || f.To == nil || f.To.String() != "2024-04-30" {
		t.Fatalf("unexpected range in %+v", f)
	}
	if f.Open == nil || !*f.Open || f.Page == nil || *f.Page != 2 || f.Limit != nil {
		t.Fatalf("unexpected paging in %+v", f)
	}
}
