package report

import (
	"bytes"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/service/report"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

const (
	FormatJSON  = "json"
	FormatPDF   = "pdf"
	FormatExcel = "excel"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Controller struct {
	report Builder
}

func NewController(report Builder) *Controller {
	return &Controller{report}
}

// Get builds the report for ?from=&to= (YYYY-MM-DD) and renders it in the
// requested format. person_id may be repeated.
func (rc Controller) Get(c *web.Context) error {
	var (
		filter report.Filter
		fields []web.FieldError
	)

	for key, dest := range map[string]*date.Date{"from": &filter.From, "to": &filter.To} {
		raw, ok := c.GetQueryFunc(reflect.String, key).(*string)
		if !ok {
			fields = append(fields, web.FieldError{Field: key, Error: "required"})
			continue
		}
		d, err := date.ParseDate(*raw)
		if err != nil {
			fields = append(fields, web.FieldError{Field: key, Error: "must be a YYYY-MM-DD date"})
			continue
		}
		*dest = d
	}
	if zone, ok := c.GetQueryFunc(reflect.String, "zone_code").(*string); ok {
		filter.ZoneCode = *zone
	}
	if official, ok := c.GetQueryFunc(reflect.String, "official_entry").(*string); ok {
		filter.OfficialEntry = *official
	}
	for _, id := range c.QueryArray("person_id") {
		for _, part := range strings.Split(id, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.PersonIDs = append(filter.PersonIDs, part)
			}
		}
	}

	format := FormatJSON
	if f, ok := c.GetQueryFunc(reflect.String, "format").(*string); ok {
		format = strings.ToLower(*f)
	}
	switch format {
	case FormatJSON, FormatPDF, FormatExcel:
	case "xlsx":
		format = FormatExcel
	default:
		fields = append(fields, web.FieldError{Field: "format", Error: "must be one of json, pdf, excel"})
	}

	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}
	if len(fields) > 0 {
		return c.RespondError(&web.Error{
			Err:    errors.New("invalid query parameters"),
			Status: http.StatusBadRequest,
			Fields: fields,
		})
	}

	rep, err := rc.report.Build(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	name := fmt.Sprintf("attendance_%s_%s", filter.From, filter.To)

	switch format {
	case FormatPDF:
		var buf bytes.Buffer
		if err = report.WritePDF(&buf, rep); err != nil {
			return c.RespondError(errors.Wrap(err, "rendering pdf"))
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", name))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
		return nil
	case FormatExcel:
		var buf bytes.Buffer
		if err = report.WriteExcel(&buf, rep); err != nil {
			return c.RespondError(errors.Wrap(err, "rendering excel"))
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return nil
	}

	return c.Respond(map[string]interface{}{
		"data":   rep,
		"status": true,
	}, http.StatusOK)
}
