package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres"
	"clocker/backend/internal/service/report"

	"github.com/Azure/go-autorest/autorest/date"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

// ledger

func (r Repository) FindByPersonDay(ctx context.Context, personID string, day date.Date) (*entity.Attendance, error) {
	var detail row

	err := r.NewSelect().
		Model(&detail).
		Where("person_id = ? AND work_day = ?", personID, day.String()).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting attendance by person and day")
	}

	a := detail.toEntity()
	return &a, nil
}

func (r Repository) Create(ctx context.Context, attendance entity.Attendance) error {
	model := fromEntity(attendance)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}

	if _, err := r.NewInsert().Model(&model).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return web.NewRequestError(errors.Wrap(postgres.ErrAlreadyExists, "attendance for this person and day"), http.StatusConflict)
		}
		return errors.Wrap(err, "creating attendance")
	}

	return nil
}

func (r Repository) SetExit(ctx context.Context, id string, exit time.Time, exitEventID string) error {
	res, err := r.NewUpdate().
		Model((*row)(nil)).
		Set("exit_time = ?", exit).
		Set("exit_event_id = ?", exitEventID).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND exit_time IS NULL", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "closing attendance")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(postgres.ErrNotFound, "open attendance %s", id)
	}

	return nil
}

// api

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	whereQuery, args := listWhere(filter)
	orderQuery := "ORDER BY a.work_day DESC, a.entry_time DESC"

	var limitQuery, offsetQuery string

	if filter.Page != nil && filter.Limit != nil {
		offset := (*filter.Page - 1) * (*filter.Limit)
		filter.Offset = &offset
	}

	if filter.Limit != nil {
		limitQuery += fmt.Sprintf(" LIMIT %d", *filter.Limit)
	}

	if filter.Offset != nil {
		offsetQuery += fmt.Sprintf(" OFFSET %d", *filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT
			a.id,
			a.person_id,
			to_char(a.work_day, 'YYYY-MM-DD'),
			a.entry_time,
			a.exit_time,
			a.entry_event_id,
			a.exit_event_id,
			a.created_at,
			a.updated_at,
			concat_ws(' ', NULLIF(p.name, ''), NULLIF(p.first_last_name, ''), NULLIF(p.second_last_name, '')),
			coalesce(p.zone_code, '')
		FROM attendance a
		LEFT JOIN person p ON p.id = a.person_id

		%s %s %s %s
	`, whereQuery, orderQuery, limitQuery, offsetQuery)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting attendance"), http.StatusBadRequest)
	}
	defer rows.Close()

	var list []GetListResponse

	for rows.Next() {
		detail, err := scanListRow(rows)
		if err != nil {
			return nil, 0, web.NewRequestError(errors.Wrap(err, "scanning attendance list"), http.StatusBadRequest)
		}

		list = append(list, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "reading attendance list"), http.StatusBadRequest)
	}

	countQuery := fmt.Sprintf(`
		SELECT
			count(a.id)
		FROM attendance a
		LEFT JOIN person p ON p.id = a.person_id
			%s
	`, whereQuery)

	count := 0
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, web.NewRequestError(errors.Wrap(err, "counting attendance"), http.StatusBadRequest)
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id string) (GetDetailByIdResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return GetDetailByIdResponse{}, err
	}

	query := `
		SELECT
			a.id,
			a.person_id,
			to_char(a.work_day, 'YYYY-MM-DD'),
			a.entry_time,
			a.exit_time,
			a.entry_event_id,
			a.exit_event_id,
			a.created_at,
			a.updated_at,
			concat_ws(' ', NULLIF(p.name, ''), NULLIF(p.first_last_name, ''), NULLIF(p.second_last_name, '')),
			coalesce(p.zone_code, ''),
			en.photo_path,
			ex.photo_path
		FROM attendance a
		LEFT JOIN person p ON p.id = a.person_id
		LEFT JOIN clock_event en ON en.id = a.entry_event_id
		LEFT JOIN clock_event ex ON ex.id = a.exit_event_id
		WHERE a.deleted_at IS NULL AND a.id = ?
	`

	var (
		detail   GetDetailByIdResponse
		workDay  string
		exitID   *string
		entryImg sql.NullString
		exitImg  sql.NullString
	)

	err = r.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.PersonID,
		&workDay,
		&detail.EntryTime,
		&detail.ExitTime,
		&detail.EntryEventID,
		&exitID,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.PersonName,
		&detail.ZoneCode,
		&entryImg,
		&exitImg,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetDetailByIdResponse{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return GetDetailByIdResponse{}, web.NewRequestError(errors.Wrap(err, "selecting attendance detail"), http.StatusBadRequest)
	}

	if detail.WorkDay, err = date.ParseDate(workDay); err != nil {
		return GetDetailByIdResponse{}, errors.Wrap(err, "parsing work day")
	}
	if exitID != nil {
		detail.ExitEventID = *exitID
	}
	if entryImg.Valid {
		detail.EntryPhoto = &entryImg.String
	}
	if exitImg.Valid {
		detail.ExitPhoto = &exitImg.String
	}
	detail.MinutesWorked = detail.Attendance.MinutesWorked()

	return detail, nil
}

func (r Repository) Delete(ctx context.Context, id string) error {
	return r.DeleteRow(ctx, "attendance", id)
}

// ListForReport returns the attendance of the report range joined with the
// person and zone data the report needs.
func (r Repository) ListForReport(ctx context.Context, filter report.Filter) ([]report.Record, error) {
	where := []string{
		"a.deleted_at IS NULL",
		"a.work_day >= ?",
		"a.work_day <= ?",
	}
	args := []interface{}{filter.From.String(), filter.To.String()}

	if len(filter.PersonIDs) > 0 {
		where = append(where, "a.person_id IN (?)")
		args = append(args, bun.In(filter.PersonIDs))
	}
	if filter.ZoneCode != "" {
		where = append(where, "p.zone_code = ?")
		args = append(args, filter.ZoneCode)
	}

	query := fmt.Sprintf(`
		SELECT
			a.id,
			a.person_id,
			to_char(a.work_day, 'YYYY-MM-DD'),
			a.entry_time,
			a.exit_time,
			concat_ws(' ', NULLIF(p.name, ''), NULLIF(p.first_last_name, ''), NULLIF(p.second_last_name, '')),
			coalesce(p.zone_code, ''),
			coalesce(z.start_time, '')
		FROM attendance a
		LEFT JOIN person p ON p.id = a.person_id
		LEFT JOIN zone z ON z.code = p.zone_code AND z.deleted_at IS NULL
		WHERE %s
		ORDER BY a.work_day, 6, a.entry_time
	`, strings.Join(where, " AND "))

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, web.NewRequestError(errors.Wrap(err, "selecting report attendance"), http.StatusInternalServerError)
	}
	defer rows.Close()

	var list []report.Record
	for rows.Next() {
		var (
			rec     report.Record
			workDay string
		)
		if err := rows.Scan(
			&rec.Attendance.ID,
			&rec.Attendance.PersonID,
			&workDay,
			&rec.Attendance.EntryTime,
			&rec.Attendance.ExitTime,
			&rec.PersonName,
			&rec.ZoneCode,
			&rec.ZoneStart,
		); err != nil {
			return nil, web.NewRequestError(errors.Wrap(err, "scanning report attendance"), http.StatusInternalServerError)
		}
		if rec.Attendance.WorkDay, err = date.ParseDate(workDay); err != nil {
			return nil, errors.Wrap(err, "parsing work day")
		}
		list = append(list, rec)
	}

	return list, rows.Err()
}

func listWhere(filter Filter) (string, []interface{}) {
	where := []string{"a.deleted_at IS NULL"}
	var args []interface{}

	if filter.PersonID != nil {
		where = append(where, "a.person_id = ?")
		args = append(args, *filter.PersonID)
	}
	if filter.ZoneCode != nil {
		where = append(where, "p.zone_code = ?")
		args = append(args, *filter.ZoneCode)
	}
	if filter.From != nil {
		where = append(where, "a.work_day >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "a.work_day <= ?")
		args = append(args, filter.To.String())
	}
	if filter.Open != nil {
		if *filter.Open {
			where = append(where, "a.exit_time IS NULL")
		} else {
			where = append(where, "a.exit_time IS NOT NULL")
		}
	}

	return "WHERE " + strings.Join(where, " AND "), args
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanListRow(s scanner) (GetListResponse, error) {
	var (
		detail  GetListResponse
		workDay string
		exitID  *string
	)

	if err := s.Scan(
		&detail.ID,
		&detail.PersonID,
		&workDay,
		&detail.EntryTime,
		&detail.ExitTime,
		&detail.EntryEventID,
		&exitID,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.PersonName,
		&detail.ZoneCode,
	); err != nil {
		return GetListResponse{}, err
	}

	var err error
	if detail.WorkDay, err = date.ParseDate(workDay); err != nil {
		return GetListResponse{}, errors.Wrap(err, "parsing work day")
	}
	if exitID != nil {
		detail.ExitEventID = *exitID
	}
	detail.MinutesWorked = detail.Attendance.MinutesWorked()

	return detail, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
