package mongo

import (
	"alcyxob/workout-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// Diagnose connects to uri on its own client, asks the server for its clock,
// creates the indexes in database and reports the outcome.
func Diagnose(ctx context.Context, uri, database string, timeout time.Duration) repository.DiagnosticReport {
	if timeout <= 0 {
		timeout = repository.DefaultProbeTimeout
	}
	report := repository.DiagnosticReport{
		Backend:     repository.BackendMongo,
		Diagnostics: describeURI(uri, database),
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ConnectDB(ctx, uri, timeout)
	if err != nil {
		return failed(report, err)
	}
	defer DisconnectDB(client)

	var hello struct {
		LocalTime time.Time `bson:"localTime"`
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return failed(report, err)
	}
	report.ConnectionTest = &repository.ConnectionTest{Test: 1, CurrentTime: hello.LocalTime.UTC()}

	if err := EnsureSessionIndexes(ctx, client.Database(report.Diagnostics.Database)); err != nil {
		return failed(report, fmt.Errorf("create indexes: %w", err))
	}

	report.Success = true
	report.NeedsRestart = true
	report.Message = "Database connection successful and indexes created. Restart the application to use MongoDB storage."
	return report
}

func failed(report repository.DiagnosticReport, err error) repository.DiagnosticReport {
	report.Success = false
	report.Message = "Database migration failed"
	report.Details = err.Error()
	report.Suggestions = suggestionsFor(err)
	return report
}

// describeURI reports host, port and database of uri.
func describeURI(uri, database string) repository.Diagnostics {
	d := repository.Diagnostics{
		HasURL:    uri != "",
		URLFormat: "incorrect",
		Hostname:  "unknown",
		Port:      "unknown",
		Database:  DatabaseName(uri, database),
	}
	if IsURL(uri) {
		d.URLFormat = "correct"
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || len(cs.Hosts) == 0 {
		return d
	}
	host, port, found := strings.Cut(cs.Hosts[0], ":")
	d.Hostname = host
	if found {
		d.Port = port
	} else if cs.Scheme == connstring.SchemeMongoDB {
		d.Port = "27017"
	}
	return d
}

func suggestionsFor(err error) []string {
	msg := strings.ToLower(err.Error())

	var cmdErr mongo.CommandError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) ||
		strings.Contains(msg, "server selection"):
		return []string{
			"Check that the database hostname is correct",
			"Check that the database server is running",
			"Check the network connection to the database",
		}
	case errors.As(err, &cmdErr) && cmdErr.Code == 18, strings.Contains(msg, "authentication"):
		return []string{
			"Check the password in DATABASE_URL",
			"Check that the user has the required permissions",
		}
	case strings.Contains(msg, "no such host"):
		return []string{
			"The database hostname cannot be resolved",
			"Check that the database URL is correct",
		}
	}
	return nil
}
