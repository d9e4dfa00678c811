package postgres

import (
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Diagnose connects to url independently of the live store, runs a trial
// query bounded by timeout, creates the tables and reports what happened.
// It never returns an error: failures are described in the report.
func Diagnose(ctx context.Context, url string, timeout time.Duration) repository.DiagnosticReport {
	if timeout <= 0 {
		timeout = repository.DefaultProbeTimeout
	}
	report := repository.DiagnosticReport{
		Backend:     repository.BackendPostgres,
		Diagnostics: describeURL(url),
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := Connect(ctx, url, ConnectOptions{MaxConns: 1, ConnectTimeout: timeout})
	if err != nil {
		return failed(report, err)
	}
	defer pool.Close()

	var test repository.ConnectionTest
	if err := pool.QueryRow(ctx, `SELECT 1 AS test, NOW() AS current_time`).Scan(&test.Test, &test.CurrentTime); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("connection timeout after %s: %w", timeout, err)
		}
		return failed(report, err)
	}
	test.CurrentTime = test.CurrentTime.UTC()
	report.ConnectionTest = &test

	if err := Migrate(ctx, pool); err != nil {
		return failed(report, fmt.Errorf("create tables: %w", err))
	}

	report.Success = true
	report.NeedsRestart = true
	report.Message = "Database connection successful and tables created. Restart the application to use PostgreSQL storage."
	return report
}

func failed(report repository.DiagnosticReport, err error) repository.DiagnosticReport {
	report.Success = false
	report.Message = "Database migration failed"
	report.Details = err.Error()
	report.Suggestions = suggestionsFor(err)
	return report
}

// describeURL extracts host, port and database name; the password is never reported.
func describeURL(url string) repository.Diagnostics {
	d := repository.Diagnostics{
		HasURL:    url != "",
		URLFormat: "incorrect",
		Hostname:  "unknown",
		Port:      "unknown",
		Database:  "unknown",
	}
	// ParseConfig fills libpq defaults and PG* env vars for anything else.
	if !IsURL(url) {
		return d
	}
	d.URLFormat = "correct"
	cfg, err := pgconn.ParseConfig(url)
	if err != nil {
		return d
	}
	if cfg.Host != "" {
		d.Hostname = cfg.Host
	}
	if cfg.Port != 0 {
		d.Port = strconv.Itoa(int(cfg.Port))
	}
	if cfg.Database != "" {
		d.Database = cfg.Database
	}
	return d
}

// suggestionsFor maps common connection failures to remediation hints.
func suggestionsFor(err error) []string {
	msg := strings.ToLower(err.Error())

	var dnsErr *net.DNSError
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout"):
		return []string{
			"Check that the database hostname is correct",
			"Check that the database server is running",
			"Check the network connection to the database",
		}
	case errors.As(err, &pgErr) && (pgErr.Code == "28P01" || pgErr.Code == "28000"),
		strings.Contains(msg, "authentication"):
		return []string{
			"Check the password in DATABASE_URL",
			"Check that the user has the required permissions",
		}
	case errors.As(err, &dnsErr), strings.Contains(msg, "no such host"):
		return []string{
			"The database hostname cannot be resolved",
			"Check that the database URL is correct",
		}
	}
	return nil
}
