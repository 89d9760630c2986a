package clock

import (
	"context"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/repository/postgres/clock"
	"clocker/backend/internal/service/clocking"

	"github.com/pkg/errors"
)

type Controller struct {
	capturer Capturer
	clock    Clock
}

func NewController(capturer Capturer, clock Clock) *Controller {
	return &Controller{capturer: capturer, clock: clock}
}

// QRCodeRequest is a capture where the person is identified by the scanned
// badge. The badge payload is the person id.
type QRCodeRequest struct {
	QRCode    string                `json:"qr_code"   form:"qr_code"`
	Type      string                `json:"type"      form:"type"`
	Address   string                `json:"address"   form:"address"`
	Latitude  *float64              `json:"latitude"  form:"latitude"`
	Longitude *float64              `json:"longitude" form:"longitude"`
	Photo     *multipart.FileHeader `json:"-"         form:"photo"`
}

func (cc Controller) Capture(c *web.Context) error {
	var request clocking.CaptureRequest

	if err := c.BindFunc(&request, "PersonID"); err != nil {
		return c.RespondError(err)
	}

	return cc.capture(c, request)
}

func (cc Controller) CaptureByQRCode(c *web.Context) error {
	var request QRCodeRequest

	if err := c.BindFunc(&request, "QRCode"); err != nil {
		return c.RespondError(err)
	}

	return cc.capture(c, clocking.CaptureRequest{
		PersonID:  strings.TrimSpace(request.QRCode),
		Type:      request.Type,
		Address:   request.Address,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
		Photo:     request.Photo,
	})
}

func (cc Controller) capture(c *web.Context, request clocking.CaptureRequest) error {
	request.CreatedBy = userID(c.Ctx)

	response, err := cc.capturer.Capture(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (cc Controller) GetList(c *web.Context) error {
	var filter clock.Filter

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

	var fields []web.FieldError
	for key, dest := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw, ok := c.GetQueryFunc(reflect.String, key).(*string)
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, *raw)
		if err != nil {
			fields = append(fields, web.FieldError{Field: key, Error: "must be an RFC3339 timestamp"})
			continue
		}
		*dest = &t
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

	list, count, err := cc.clock.GetList(c.Ctx, filter)
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

func (cc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	detail, err := cc.clock.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   detail,
		"status": true,
	}, http.StatusOK)
}

func (cc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := cc.clock.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func userID(ctx context.Context) *int {
	claims, ok := ctx.Value(auth.Key).(auth.Claims)
	if !ok {
		return nil
	}
	id := claims.UserId
	return &id
}
