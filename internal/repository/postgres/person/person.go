package person

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// GetPerson loads a person by id for clock capture.
func (r Repository) GetPerson(ctx context.Context, id string) (entity.Person, error) {
	var detail entity.Person

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Person{}, web.NewRequestError(errors.Wrapf(postgres.ErrNotFound, "person %s", id), http.StatusNotFound)
	}
	if err != nil {
		return entity.Person{}, web.NewRequestError(errors.Wrap(err, "selecting person"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]entity.Person, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	var list []entity.Person

	q := r.NewSelect().Model(&list).Order("created_at DESC")

	if filter.Search != nil {
		search := "%" + strings.TrimSpace(*filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("id ILIKE ?", search).
				WhereOr("concat_ws(' ', name, first_last_name, second_last_name) ILIKE ?", search).
				WhereOr("id_document ILIKE ?", search)
		})
	}
	if filter.ZoneCode != nil {
		q = q.Where("zone_code = ?", *filter.ZoneCode)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}
	if filter.Limit != nil {
		q = q.Limit(*filter.Limit)
	}
	if filter.Offset != nil {
		q = q.Offset(*filter.Offset)
	}

	count, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting persons"), http.StatusBadRequest)
	}

	return list, count, nil
}

// GetAll returns every active person ordered by id.
func (r Repository) GetAll(ctx context.Context) ([]entity.Person, error) {
	var list []entity.Person

	if err := r.NewSelect().Model(&list).Where("active").Order("id").Scan(ctx); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting persons"), http.StatusInternalServerError)
	}

	return list, nil
}

func (r Repository) GetDetailById(ctx context.Context, id string) (entity.Person, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return entity.Person{}, err
	}

	return r.GetPerson(ctx, id)
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (entity.Person, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return entity.Person{}, err
	}

	if err := r.ValidateStruct(&request, "ID", "Name", "ZoneCode"); err != nil {
		return entity.Person{}, err
	}

	id := strings.TrimSpace(*request.ID)
	if err := validateID(id); err != nil {
		return entity.Person{}, err
	}

	exists, err := r.NewSelect().Model((*entity.Person)(nil)).WhereAllWithDeleted().Where("id = ?", id).Exists(ctx)
	if err != nil {
		return entity.Person{}, web.NewRequestError(errors.Wrap(err, "person id check"), http.StatusInternalServerError)
	}
	if exists {
		return entity.Person{}, web.NewRequestError(errors.New("person id is used"), http.StatusBadRequest)
	}

	if err := r.zoneExists(ctx, *request.ZoneCode); err != nil {
		return entity.Person{}, err
	}

	person := entity.Person{
		ID:             id,
		Name:           *request.Name,
		FirstLastName:  deref(request.FirstLastName),
		SecondLastName: deref(request.SecondLastName),
		Nationality:    deref(request.Nationality),
		IDDocument:     deref(request.IDDocument),
		ZoneCode:       *request.ZoneCode,
		Active:         request.Active == nil || *request.Active,
	}
	person.CreatedAt = time.Now()
	person.CreatedBy = &claims.UserId

	if _, err := r.NewInsert().Model(&person).Exec(ctx); err != nil {
		return entity.Person{}, web.NewRequestError(errors.Wrap(err, "creating person"), http.StatusBadRequest)
	}

	return person, nil
}

// CreateMany inserts imported persons in one transaction.
func (r Repository) CreateMany(ctx context.Context, persons []entity.Person) (int, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return 0, err
	}
	if len(persons) == 0 {
		return 0, nil
	}

	now := time.Now()
	for i := range persons {
		persons[i].CreatedAt = now
		persons[i].CreatedBy = &claims.UserId
	}

	err = r.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&persons).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, web.NewRequestError(errors.Wrap(err, "importing persons"), http.StatusBadRequest)
	}

	return len(persons), nil
}

// ExistingIDs returns every person id, deleted ones included.
func (r Repository) ExistingIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	if err := r.NewSelect().Model((*entity.Person)(nil)).WhereAllWithDeleted().Column("id").Scan(ctx, &ids); err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting person ids"), http.StatusInternalServerError)
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	q := r.NewUpdate().Table("person").Where("deleted_at IS NULL AND id = ?", request.ID)

	if request.Name != nil {
		q.Set("name = ?", strings.TrimSpace(*request.Name))
	}
	if request.FirstLastName != nil {
		q.Set("first_last_name = ?", strings.TrimSpace(*request.FirstLastName))
	}
	if request.SecondLastName != nil {
		q.Set("second_last_name = ?", strings.TrimSpace(*request.SecondLastName))
	}
	if request.Nationality != nil {
		q.Set("nationality = ?", *request.Nationality)
	}
	if request.IDDocument != nil {
		q.Set("id_document = ?", *request.IDDocument)
	}
	if request.ZoneCode != nil {
		if err := r.zoneExists(ctx, *request.ZoneCode); err != nil {
			return err
		}
		q.Set("zone_code = ?", *request.ZoneCode)
	}
	if request.Active != nil {
		q.Set("active = ?", *request.Active)
	}

	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	res, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating person"), http.StatusBadRequest)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return nil
}

func (r Repository) Delete(ctx context.Context, id string) error {
	return r.DeleteRow(ctx, "person", id)
}

func (r Repository) zoneExists(ctx context.Context, code string) error {
	exists, err := r.NewSelect().Model((*entity.Zone)(nil)).Where("code = ?", code).Exists(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "zone code check"), http.StatusInternalServerError)
	}
	if !exists {
		return web.NewRequestError(errors.Errorf("zone %q does not exist", code), http.StatusBadRequest)
	}
	return nil
}

func validateID(id string) error {
	if entity.ValidPersonID(id) {
		return nil
	}
	return &web.Error{
		Err:    errors.Errorf("invalid person id %q", id),
		Status: http.StatusBadRequest,
		Fields: []web.FieldError{{Field: "id", Error: "letters, digits, '.', '_' or '-' only"}},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
