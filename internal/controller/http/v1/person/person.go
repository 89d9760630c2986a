package person

import (
	"bytes"
	"net/http"
	"reflect"
	"strings"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/repository/postgres/person"
	"clocker/backend/internal/service"
	"clocker/backend/internal/service/importer"

	"github.com/pkg/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Controller struct {
	person  Person
	zone    Zone
	company string
}

func NewController(person Person, zone Zone, company string) *Controller {
	return &Controller{person: person, zone: zone, company: company}
}

func (pc Controller) GetList(c *web.Context) error {
	var filter person.Filter

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
	if zone, ok := c.GetQueryFunc(reflect.String, "zone_code").(*string); ok {
		filter.ZoneCode = zone
	}
	if active, ok := c.GetQueryFunc(reflect.Bool, "active").(*bool); ok {
		filter.Active = active
	}
	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := pc.person.GetList(c.Ctx, filter)
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

func (pc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := pc.person.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (pc Controller) GetQrCode(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	detail, err := pc.person.GetDetailById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	png, err := service.QRCode(detail.ID)
	if err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "inline; filename=\"qr_"+detail.ID+".png\"")
	c.Data(http.StatusOK, "image/png", png)
	return nil
}

func (pc Controller) GetQrCodeList(c *web.Context) error {
	persons, err := pc.person.GetAll(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var buf bytes.Buffer
	if err := service.WriteBadgeSheet(&buf, pc.company, persons); err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "attachment; filename=\"qr_persons.pdf\"")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	return nil
}

func (pc Controller) Export(c *web.Context) error {
	persons, err := pc.person.GetAll(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	var buf bytes.Buffer
	if err := service.WritePersonWorkbook(&buf, persons); err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "attachment; filename=\"persons.xlsx\"")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	return nil
}

func (pc Controller) ExportTemplate(c *web.Context) error {
	var buf bytes.Buffer
	if err := service.WritePersonWorkbook(&buf, nil); err != nil {
		return c.RespondError(err)
	}

	c.Header("Content-Disposition", "attachment; filename=\"persons_template.xlsx\"")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	return nil
}

func (pc Controller) Create(c *web.Context) error {
	var request person.CreateRequest
	if err := c.BindFunc(&request, "ID", "Name", "ZoneCode"); err != nil {
		return c.RespondError(err)
	}

	response, err := pc.person.Create(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusCreated)
}

func (pc Controller) Import(c *web.Context) error {
	file, err := c.FormFile("excel")
	if err != nil {
		return c.RespondError(web.NewRequestError(errors.Wrap(err, "excel file is required"), http.StatusBadRequest))
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".xlsx") {
		return c.RespondError(web.NewRequestError(errors.New("only .xlsx files are supported"), http.StatusBadRequest))
	}

	src, err := file.Open()
	if err != nil {
		return c.RespondError(err)
	}
	defer src.Close()

	existing, err := pc.person.ExistingIDs(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}
	zones, err := pc.zone.Codes(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	persons, invalid, err := importer.ReadPersons(src, existing, zones)
	if err != nil {
		return c.RespondError(web.NewRequestError(err, http.StatusBadRequest))
	}

	created, err := pc.person.CreateMany(c.Ctx, persons)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": person.ImportResponse{
			Created:     created,
			InvalidRows: invalid,
		},
		"status": true,
	}, http.StatusOK)
}

func (pc Controller) UpdateColumns(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request person.UpdateRequest

	if err := c.BindFunc(&request); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	if err := pc.person.UpdateColumns(c.Ctx, request); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}

func (pc Controller) Delete(c *web.Context) error {
	id := c.GetParam(reflect.String, "id").(string)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	if err := pc.person.Delete(c.Ctx, id); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
