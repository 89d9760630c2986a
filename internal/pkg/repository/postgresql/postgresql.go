package postgresql

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/pkg/config"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// Database is the bun handle shared by every postgres repository.
type Database struct {
	*bun.DB
}

// New opens the connection pool described by cfg and verifies it.
func New(ctx context.Context, cfg *config.Config) (*Database, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithNetwork("tcp"),
		pgdriver.WithAddr(net.JoinHostPort(cfg.DBHost, cfg.DBPort)),
		pgdriver.WithUser(cfg.DBUsername),
		pgdriver.WithPassword(cfg.DBPassword),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(cfg.DisableTLS),
		pgdriver.WithTimeout(5*time.Second),
	)

	sqldb := sql.OpenDB(connector)
	sqldb.SetMaxOpenConns(25)
	sqldb.SetMaxIdleConns(25)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.DBDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "pinging database")
	}

	return &Database{DB: db}, nil
}

// CheckClaims returns the claims the authentication middleware stored in ctx.
func (d Database) CheckClaims(ctx context.Context) (auth.Claims, error) {
	claims, ok := ctx.Value(auth.Key).(auth.Claims)
	if !ok {
		return auth.Claims{}, web.NewRequestError(errors.New("claims missing from context"), http.StatusUnauthorized)
	}

	return claims, nil
}

// ValidateStruct reports the named fields of s that hold their zero value.
func (d Database) ValidateStruct(s interface{}, fields ...string) error {
	if list := web.RequiredFields(s, fields...); len(list) > 0 {
		return &web.Error{
			Err:    errors.New("required fields are missing"),
			Status: http.StatusBadRequest,
			Fields: list,
		}
	}

	return nil
}

// DeleteRow soft deletes the row id of table.
func (d Database) DeleteRow(ctx context.Context, table string, id interface{}) error {
	claims, err := d.CheckClaims(ctx)
	if err != nil {
		return err
	}

	res, err := d.NewUpdate().
		Table(table).
		Where("deleted_at IS NULL AND id = ?", id).
		Set("deleted_at = ?", time.Now()).
		Set("deleted_by = ?", claims.UserId).
		Exec(ctx)
	if err != nil {
		return web.NewRequestError(errors.Wrapf(err, "deleting %s", table), http.StatusInternalServerError)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return web.NewRequestError(errors.Errorf("%s not found", table), http.StatusNotFound)
	}

	return nil
}
