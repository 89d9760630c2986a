package commands

import (
	"context"
	"database/sql"

	"clocker/backend/internal/auth"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres/user"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

type Scheme struct {
	Index       int
	Description string
	Query       string
}

var scheme = []Scheme{
	{
		Index:       1,
		Description: "Create type: user_role.",
		Query:       `CREATE TYPE "user_role" AS ENUM ('ADMIN', 'CLOCK');`,
	},
	{
		Index:       2,
		Description: "Create table: users.",
		Query: `
        CREATE TABLE IF NOT EXISTS users (
            id serial primary key,
            name text,
            email text not null,
            password text not null,
            role user_role not null,
            active bool not null default true,
            created_at timestamptz not null default now(),
            created_by int references users(id),
            updated_at timestamptz,
            updated_by int references users(id),
            deleted_at timestamptz,
            deleted_by int references users(id)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email)) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       3,
		Description: "Create table: zone.",
		Query: `
        CREATE TABLE IF NOT EXISTS zone (
            id serial primary key,
            code text not null,
            name text not null default '',
            description text not null default '',
            start_time text not null,
            end_time text not null,
            days text[] not null default '{}',
            active bool not null default true,
            created_at timestamptz not null default now(),
            created_by int references users(id),
            updated_at timestamptz,
            updated_by int references users(id),
            deleted_at timestamptz,
            deleted_by int references users(id)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS zone_code_key ON zone (code) WHERE deleted_at IS NULL;`,
	},
	{
		Index:       4,
		Description: "Create table: person.",
		Query: `
        CREATE TABLE IF NOT EXISTS person (
            id text primary key,
            name text not null default '',
            first_last_name text not null default '',
            second_last_name text not null default '',
            nationality text not null default '',
            id_document text not null default '',
            zone_code text not null default '',
            active bool not null default true,
            created_at timestamptz not null default now(),
            created_by int references users(id),
            updated_at timestamptz,
            updated_by int references users(id),
            deleted_at timestamptz,
            deleted_by int references users(id)
        );
        CREATE INDEX IF NOT EXISTS person_zone_code_idx ON person (zone_code);`,
	},
	{
		Index:       5,
		Description: "Create table: clock_event.",
		Query: `
        CREATE TABLE IF NOT EXISTS clock_event (
            id text primary key,
            person_id text not null references person(id),
            clocked_at timestamptz not null,
            type text not null default 'ENTRY/EXIT',
            address text not null default '',
            latitude double precision,
            longitude double precision,
            photo_path text not null default '',
            thumbnail_path text not null default '',
            created_at timestamptz not null default now(),
            created_by int references users(id),
            deleted_at timestamptz,
            deleted_by int references users(id)
        );
        CREATE INDEX IF NOT EXISTS clock_event_person_clocked_idx ON clock_event (person_id, clocked_at);`,
	},
	{
		Index:       6,
		Description: "Create table: attendance.",
		Query: `
        CREATE TABLE IF NOT EXISTS attendance (
            id text primary key,
            person_id text not null references person(id),
            work_day date not null,
            entry_time timestamptz not null,
            exit_time timestamptz,
            entry_event_id text not null references clock_event(id),
            exit_event_id text references clock_event(id),
            created_at timestamptz not null default now(),
            updated_at timestamptz,
            deleted_at timestamptz,
            deleted_by int references users(id),
            CHECK (exit_time IS NULL OR exit_time >= entry_time)
        );
        CREATE UNIQUE INDEX IF NOT EXISTS attendance_person_day_key ON attendance (person_id, work_day) WHERE deleted_at IS NULL;
        CREATE INDEX IF NOT EXISTS attendance_work_day_idx ON attendance (work_day);`,
	},
}

// MigrateUP applies every scheme entry newer than the recorded version. A
// failed entry leaves the version dirty and is retried on the next run.
func MigrateUP(ctx context.Context, db *postgresql.Database) error {
	var (
		version int
		dirty   bool
		er      *string
	)

	err := db.QueryRowContext(ctx, "SELECT version, dirty, error FROM schema_migrations").Scan(&version, &dirty, &er)
	if err != nil {
		var pgErr pgdriver.Error
		switch {
		case errors.As(err, &pgErr) && pgErr.Field('C') == "42P01":
			if _, err = db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS schema_migrations (version int not null, dirty bool not null, error text);
				DELETE FROM schema_migrations;
				INSERT INTO schema_migrations (version, dirty) values (0, false);
			`); err != nil {
				return errors.Wrap(err, "creating schema_migrations")
			}
			version, dirty = 0, false
		case errors.Is(err, sql.ErrNoRows):
			if _, err = db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) values (0, false)`); err != nil {
				return errors.Wrap(err, "initialising schema_migrations")
			}
		default:
			return errors.Wrap(err, "reading schema_migrations")
		}
	}

	for _, s := range scheme {
		if s.Index < version || (s.Index == version && !dirty) {
			continue
		}

		if _, err = db.ExecContext(ctx, s.Query); err != nil {
			if _, uerr := db.ExecContext(ctx, `UPDATE schema_migrations SET error = ?, version = ?, dirty = true`, err.Error(), s.Index); uerr != nil {
				return errors.Wrap(uerr, "recording migration error")
			}
			return errors.Wrapf(err, "migrate version %d", s.Index)
		}
		if _, err = db.ExecContext(ctx, `UPDATE schema_migrations SET version = ?, dirty = false, error = null`, s.Index); err != nil {
			return errors.Wrap(err, "recording migration version")
		}

		log.Ctx(ctx).Info().Int("version", s.Index).Msg(s.Description)
	}

	return nil
}

// SeedAdmin creates the first administrator when no active admin exists.
func SeedAdmin(ctx context.Context, db *postgresql.Database, email, password string) error {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = ? AND deleted_at IS NULL)`, auth.RoleAdmin,
	).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking for admin")
	}
	if exists {
		return nil
	}

	hash, err := user.HashPassword(password)
	if err != nil {
		return err
	}

	if _, err = db.ExecContext(ctx,
		`INSERT INTO users (name, email, password, role) VALUES (?, ?, ?, ?)`,
		"Administrator", email, hash, auth.RoleAdmin,
	); err != nil {
		return errors.Wrap(err, "inserting admin")
	}

	log.Ctx(ctx).Info().Str("email", email).Msg("admin user created")
	return nil
}
