package zone

import (
	"net/http"
	"reflect"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/repository/postgres/zone"
	"clocker/backend/internal/service/schedule"

	"github.com/pkg/errors"
)

type Controller struct {
	zone  Zone
	cache Cache
	loc   *time.Location
	now   func() time.Time
}

func NewController(zone Zone, cache Cache, loc *time.Location) *Controller {
	return &Controller{zone: zone, cache: cache, loc: loc, now: time.Now}
}

func (zc Controller) GetList(c *web.Context) error {
	var filter zone.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = search
	}
	if active, ok := c.GetQueryFunc(reflect.Bool, "active").(*bool); ok {
		filter.Active = active
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := zc.zone.GetList(c.Ctx, filter)
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

func (zc Controller) GetActive(c *web.Context) error {
	list, err := zc.zone.GetActive(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   list,
		"status": true,
	}, http.StatusOK)
}

func (zc Controller) GetByCode(c *web.Context) error {
	code := c.GetParam(reflect.String, "code").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	detail, err := zc.zone.GetByCode(c.Ctx, code)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   detail,
		"status": true,
	}, http.StatusOK)
}

func (zc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	detail, err := zc.zone.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   detail,
		"status": true,
	}, http.StatusOK)
}

// Check runs the schedule validator for the zone at the given instant, now
// when "at" is omitted.
func (zc Controller) Check(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	at := zc.now()
	if raw, ok := c.GetQueryFunc(reflect.String, "at").(*string); ok {
		parsed, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			return c.RespondError(&web.Error{
				Err:    errors.New("invalid query parameters"),
				Status: http.StatusBadRequest,
				Fields: []web.FieldError{{Field: "at", Error: "must be an RFC3339 timestamp"}},
			})
		}
		at = parsed
	}
	if zc.loc != nil {
		at = at.In(zc.loc)
	}

	detail, err := zc.zone.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	response := map[string]interface{}{
		"zone_code": detail.Code,
		"at":        at,
		"valid":     true,
	}
	if err := schedule.Check(detail, at); err != nil {
		response["valid"] = false
		response["reason"] = err.Error()
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (zc Controller) Create(c *web.Context) error {
	var request zone.CreateRequest
	if err := c.BindFunc(&request, "Code", "Name", "StartTime", "EndTime", "Days"); err != nil {
		return c.RespondError(err)
	}

	response, err := zc.zone.Create(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (zc Controller) UpdateColumns(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request zone.UpdateRequest

	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	code, err := zc.zone.UpdateColumns(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}
	zc.cache.Invalidate(c.Ctx, code)

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (zc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	code, err := zc.zone.Delete(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}
	zc.cache.Invalidate(c.Ctx, code)

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
