package user

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/entity"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type Repository struct {
	*postgresql.Database
}

func NewRepository(database *postgresql.Database) *Repository {
	return &Repository{Database: database}
}

func (r Repository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).Where("lower(email) = lower(?)", strings.TrimSpace(email)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, web.NewRequestError(errors.New("user not found"), http.StatusUnauthorized)
	}
	if err != nil {
		return entity.User{}, web.NewRequestError(errors.Wrap(err, "selecting user"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) GetById(ctx context.Context, id int) (entity.User, error) {
	var detail entity.User

	err := r.NewSelect().Model(&detail).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}
	if err != nil {
		return entity.User{}, web.NewRequestError(errors.Wrap(err, "selecting user"), http.StatusInternalServerError)
	}

	return detail, nil
}

func (r Repository) GetList(ctx context.Context, filter Filter) ([]GetListResponse, int, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return nil, 0, err
	}

	var users []entity.User

	q := r.NewSelect().Model(&users).Order("created_at DESC")

	if filter.Search != nil {
		search := "%" + strings.TrimSpace(*filter.Search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("name ILIKE ?", search).WhereOr("email ILIKE ?", search)
		})
	}
	if filter.Role != nil {
		q = q.Where("role = ?", strings.ToUpper(*filter.Role))
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
		return nil, 0, web.NewRequestError(errors.Wrap(err, "selecting users"), http.StatusBadRequest)
	}

	list := make([]GetListResponse, 0, len(users))
	for _, u := range users {
		list = append(list, GetListResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active})
	}

	return list, count, nil
}

func (r Repository) GetDetailById(ctx context.Context, id int) (GetListResponse, error) {
	_, err := r.CheckClaims(ctx)
	if err != nil {
		return GetListResponse{}, err
	}

	u, err := r.GetById(ctx, id)
	if err != nil {
		return GetListResponse{}, err
	}

	return GetListResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active}, nil
}

func (r Repository) Create(ctx context.Context, request CreateRequest) (GetListResponse, error) {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return GetListResponse{}, err
	}

	if err := r.ValidateStruct(&request, "Name", "Email", "Password", "Role"); err != nil {
		return GetListResponse{}, err
	}

	role, err := validRole(*request.Role)
	if err != nil {
		return GetListResponse{}, err
	}
	email := strings.ToLower(strings.TrimSpace(*request.Email))
	if err := r.emailFree(ctx, email, 0); err != nil {
		return GetListResponse{}, err
	}

	hash, err := HashPassword(*request.Password)
	if err != nil {
		return GetListResponse{}, err
	}

	u := entity.User{
		Name:     request.Name,
		Email:    &email,
		Password: &hash,
		Role:     &role,
		Active:   true,
	}
	u.CreatedAt = time.Now()
	u.CreatedBy = &claims.UserId

	if _, err := r.NewInsert().Model(&u).Returning("id").Exec(ctx); err != nil {
		return GetListResponse{}, web.NewRequestError(errors.Wrap(err, "creating user"), http.StatusBadRequest)
	}

	return GetListResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Active: u.Active}, nil
}

func (r Repository) UpdateColumns(ctx context.Context, request UpdateRequest) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}

	q := r.NewUpdate().Table("users").Where("deleted_at IS NULL AND id = ?", request.ID)

	if request.Name != nil {
		q.Set("name = ?", strings.TrimSpace(*request.Name))
	}
	if request.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*request.Email))
		if err := r.emailFree(ctx, email, request.ID); err != nil {
			return err
		}
		q.Set("email = ?", email)
	}
	if request.Password != nil {
		hash, err := HashPassword(*request.Password)
		if err != nil {
			return err
		}
		q.Set("password = ?", hash)
	}
	if request.Role != nil {
		role, err := validRole(*request.Role)
		if err != nil {
			return err
		}
		q.Set("role = ?", role)
	}
	if request.Active != nil {
		q.Set("active = ?", *request.Active)
	}

	q.Set("updated_at = ?", time.Now())
	q.Set("updated_by = ?", claims.UserId)

	res, err := q.Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "updating user"), http.StatusBadRequest)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return web.NewRequestError(postgres.ErrNotFound, http.StatusNotFound)
	}

	return nil
}

func (r Repository) Delete(ctx context.Context, id int) error {
	claims, err := r.CheckClaims(ctx)
	if err != nil {
		return err
	}
	if claims.UserId == id {
		return web.NewRequestError(errors.New("you cannot delete yourself"), http.StatusBadRequest)
	}

	return r.DeleteRow(ctx, "users", id)
}

func (r Repository) emailFree(ctx context.Context, email string, exceptID int) error {
	exists, err := r.NewSelect().
		Model((*entity.User)(nil)).
		Where("lower(email) = ? AND id <> ?", email, exceptID).
		Exists(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrap(err, "email check"), http.StatusInternalServerError)
	}
	if exists {
		return web.NewRequestError(errors.New("email is used"), http.StatusBadRequest)
	}
	return nil
}

// HashPassword bcrypt hashes a password after checking its length.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", &web.Error{
			Err:    errors.New("password is too short"),
			Status: http.StatusBadRequest,
			Fields: []web.FieldError{{Field: "password", Error: "at least 6 characters"}},
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", web.NewRequestError(errors.Wrap(err, "hashing password"), http.StatusInternalServerError)
	}
	return string(hash), nil
}

func validRole(role string) (string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	switch role {
	case auth.RoleAdmin, auth.RoleClock:
		return role, nil
	}
	return "", web.NewRequestError(errors.Errorf("role must be %s or %s", auth.RoleAdmin, auth.RoleClock), http.StatusBadRequest)
}
