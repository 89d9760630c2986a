package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
db_username: clocker
db_password: secret
db_host: localhost
db_name: clocker
jwt_key: key
time_zone: America/Costa_Rica
access_token_ttl: 1h
`)

	c, err := NewConfig(path)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}

	if c.ServerPort != ":8080" || c.DBPort != "5432" || c.ReportMaxDays != 365 {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if !c.ShouldEnforceSchedule() {
		t.Fatalf("schedule enforcement must default to true")
	}
	if c.AccessTokenTTL != time.Hour {
		t.Fatalf("expected 1h access ttl, got %v", c.AccessTokenTTL)
	}

	loc, err := c.Location()
	if err != nil || loc.String() != "America/Costa_Rica" {
		t.Fatalf("unexpected location %v %v", loc, err)
	}
}

func TestNewConfigMissingDatabase(t *testing.T) {
	path := writeConfig(t, "jwt_key: key\n")
	if _, err := NewConfig(path); err == nil {
		t.Fatalf("expected error for missing database configuration")
	}
}

func TestNewConfigBadTimeZone(t *testing.T) {
	path := writeConfig(t, `
db_username: u
db_password: p
db_host: h
db_name: n
jwt_key: key
time_zone: Mars/Olympus
`)
	if _, err := NewConfig(path); err == nil {
		t.Fatalf("expected error for unknown time zone")
	}
}

func TestEnforceScheduleCanBeDisabled(t *testing.T) {
	path := writeConfig(t, `
db_username: u
db_password: p
db_host: h
db_name: n
jwt_key: key
enforce_schedule: false
`)
	c, err := NewConfig(path)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if c.ShouldEnforceSchedule() {
		t.Fatalf("expected enforcement to be disabled")
	}
}
