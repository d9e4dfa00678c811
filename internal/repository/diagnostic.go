package repository

import "time"

// DiagnosticReport is the outcome of probing a configured database outside
// of the live store: connectivity test, table creation and remediation hints.
type DiagnosticReport struct {
	Success        bool            `json:"success"`
	Backend        Backend         `json:"backend,omitempty"`
	Message        string          `json:"message,omitempty"`
	Details        string          `json:"details,omitempty"`
	Suggestions    []string        `json:"suggestions,omitempty"`
	Diagnostics    Diagnostics     `json:"diagnostics"`
	ConnectionTest *ConnectionTest `json:"connectionTest,omitempty"`
	// NeedsRestart is set on success: the live store is only chosen at startup.
	NeedsRestart bool `json:"needsRestart"`
}

// Diagnostics describes the connection string without exposing credentials.
type Diagnostics struct {
	HasURL    bool   `json:"hasUrl"`
	URLFormat string `json:"urlFormat"` // "correct" or "incorrect"
	Hostname  string `json:"hostname,omitempty"`
	Port      string `json:"port,omitempty"`
	Database  string `json:"database,omitempty"`
}

// ConnectionTest is the answer of the trial query.
type ConnectionTest struct {
	Test        int       `json:"test"`
	CurrentTime time.Time `json:"currentTime"`
}

// DefaultProbeTimeout bounds the diagnostic connection test.
const DefaultProbeTimeout = 10 * time.Second
