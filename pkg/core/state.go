package core

import (
	"fmt"
	"time"
)

// Store defines the ledger operations used by the engine.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// Run operations
	CreateRun(phase Phase, env string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	// Package operations
	RecordPackage(rec *PackageRecord) error
	ListPackages(env string, limit int) ([]*PackageRecord, error)
	LatestPackage(env string) (*PackageRecord, error)

	// Device operations
	RecordReset(rec *ResetRecord) error
	ListResets(limit int) ([]*ResetRecord, error)
}

// Phase is a build lifecycle phase at which hooks run.
type Phase string

// Build phases, in lifecycle order.
const (
	PhaseCompile   Phase = "compile"
	PhasePostLink  Phase = "post-link"
	PhasePreUpload Phase = "pre-upload"
)

// ParsePhase validates a phase name.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseCompile, PhasePostLink, PhasePreUpload:
		return Phase(s), nil
	default:
		return "", fmt.Errorf("unknown phase %q", s)
	}
}

// RunStatus represents the status of a hook run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of a phase by the host build tool.
type Run struct {
	ID          string
	Phase       Phase
	Environment string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// PackageRecord is a release package produced by a post-link run.
type PackageRecord struct {
	ID            string
	RunID         string
	Environment   string
	Path          string
	BoardIdentity BoardIdentity
	SHA256        string
	Size          int64
	Members       []string
	CreatedAt     time.Time
}

// ResetRecord is a device handshake performed by a pre-upload run.
type ResetRecord struct {
	ID           string
	RunID        string
	Manufacturer string
	Product      string
	Serial       string
	CreatedAt    time.Time
}
