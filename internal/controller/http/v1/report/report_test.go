package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/service/report"

	"github.com/gin-gonic/gin"
)

type fakeBuilder struct {
	got report.Filter
}

func (f *fakeBuilder) Build(_ context.Context, filter report.Filter) (report.Report, error) {
	f.got = filter
	return report.Report{
		Title:       "Attendance report",
		Company:     "Clocker",
		Filter:      filter,
		GeneratedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
		Rows: []report.Row{
			{PersonID: "P1", PersonName: "Ana Ruiz", Date: "2024-03-04", Entry: "08:00", Exit: "17:05", Worked: "09:05", MinutesWorked: 545},
		},
		Summary: []report.Summary{
			{PersonID: "P1", PersonName: "Ana Ruiz", Days: 1, TotalMinutes: 545, Total: "09:05"},
		},
		TotalMinutes: 545,
		Total:        "09:05",
	}, nil
}

func newApp(b Builder) *web.App {
	gin.SetMode(gin.TestMode)

	app := web.NewApp(nil)
	app.Get("/report", NewController(b).Get)
	return app
}

func get(app *web.App, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetFilter(t *testing.T) {
	b := &fakeBuilder{}
	w := get(newApp(b), "/report?from=2024-03-01&to=2024-03-31&person_id=P1,P2&person_id=P3&zone_code=OFFICE&official_entry=09:00")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if b.got.From.String() != "2024-03-01" || b.got.To.String() != "2024-03-31" {
		t.Fatalf("unexpected range %s..%s", b.got.From, b.got.To)
	}
	if strings.Join(b.got.PersonIDs, ",") != "P1,P2,P3" {
		t.Fatalf("unexpected persons %v", b.got.PersonIDs)
	}
	if b.got.ZoneCode != "OFFICE" || b.got.OfficialEntry != "09:00" {
		t.Fatalf("unexpected filter %+v", b.got)
	}
}

func TestGetRejectsBadQuery(t *testing.T) {
	app := newApp(&fakeBuilder{})

	for _, path := range []string{
		"/report?to=2024-03-31",
		"/report?from=2024-03-01&to=31/03/2024",
		"/report?from=2024-03-01&to=2024-03-31&format=csv",
	} {
		if w := get(app, path); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGetFormats(t *testing.T) {
	app := newApp(&fakeBuilder{})

	tests := []struct {
		format      string
		contentType string
	}{
		{"pdf", "application/pdf"},
		{"excel", xlsxContentType},
		{"xlsx", xlsxContentType},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := get(app, "/report?from=2024-03-01&to=2024-03-31&format="+tt.format)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Content-Type"); got != tt.contentType {
				t.Fatalf("expected %s, got %s", tt.contentType, got)
			}
			if !strings.Contains(w.Header().Get("Content-Disposition"), "attendance_2024-03-01_2024-03-31") {
				t.Fatalf("unexpected disposition %q", w.Header().Get("Content-Disposition"))
			}
			if w.Body.Len() == 0 {
				t.Fatal("empty document")
			}
		})
	}
}
