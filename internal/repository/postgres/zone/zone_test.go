package zone

import (
	"testing"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"

	"github.com/pkg/errors"
)

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name   string
		zone   entity.Zone
		fields []string
	}{
		{"valid", entity.Zone{StartTime: "08:00", EndTime: "17:00:30", Days: []string{"MONDAY", "fri"}}, nil},
		{"bad start", entity.Zone{StartTime: "8am", EndTime: "17:00", Days: []string{"MONDAY"}}, []string{"start_time"}},
		{"reversed", entity.Zone{StartTime: "18:00", EndTime: "17:00", Days: []string{"MONDAY"}}, []string{"end_time"}},
		{"no days", entity.Zone{StartTime: "08:00", EndTime: "17:00"}, []string{"days"}},
		{"bad day", entity.Zone{StartTime: "08:00", EndTime: "17:00", Days: []string{"LUNES"}}, []string{"days"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSchedule(tt.zone)
			if tt.fields == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}

			var webErr *web.Error
			if !errors.As(err, &webErr) {
				t.Fatalf("expected *web.Error, got %v", err)
			}
			if len(webErr.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %+v", tt.fields, webErr.Fields)
			}
			for i, f := range tt.fields {
				if webErr.Fields[i].Field != f {
					t.Fatalf("expected field %s, got %s", f, webErr.Fields[i].Field)
				}
			}
		})
	}
}
