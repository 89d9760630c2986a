package attendance

import (
	"net/http"
	"reflect"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/repository/postgres/attendance"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
)

type Controller struct {
	attendance Attendance
}

func NewController(attendance Attendance) *Controller {
	return &Controller{attendance}
}

func (ac Controller) GetList(c *web.Context) error {
	var filter attendance.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if personID, ok := c.GetQueryFunc(reflect.String, "person_id").(*string); ok {
		filter.PersonID = personID
	}
	if zone, ok := c.GetQueryFunc(reflect.String, "zone_code").(*string); ok {
		filter.ZoneCode = zone
	}
	if open, ok := c.GetQueryFunc(reflect.Bool, "open").(*bool); ok {
		filter.Open = open
	}

	var fields []web.FieldError
	if raw, ok := c.GetQueryFunc(reflect.String, "from").(*string); ok {
		d, err := date.ParseDate(*raw)
		if err != nil {
			fields = append(fields, web.FieldError{Field: "from", Error: "must be a YYYY-MM-DD date"})
		} else {
			filter.From = &d
		}
	}
	if raw, ok := c.GetQueryFunc(reflect.String, "to").(*string); ok {
		d, err := date.ParseDate(*raw)
		if err != nil {
			fields = append(fields, web.FieldError{Field: "to", Error: "must be a YYYY-MM-DD date"})
		} else {
			filter.To = &d
		}
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

	list, count, err := ac.attendance.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

func (ac Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := ac.attendance.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (ac Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := ac.attendance.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
