package service

import (
	"time"

	"agristock/internal/backup"
	"agristock/internal/model"
	"agristock/internal/ws"
)

// Actor identifies who performed an operation, taken from the JWT claims
type Actor struct {
	ID    string
	Name  string
	Email string
}

// SystemActor is used by the CLI and scheduled jobs
var SystemActor = Actor{ID: "system", Name: "System"}

// Notifier refreshes live views after a commit
type Notifier interface {
	Publish(collections ...ws.Collection)
}

// BackupSink receives records for best-effort replication
type BackupSink interface {
	Dispatch(rec backup.Record)
}

type nopNotifier struct{}

func (nopNotifier) Publish(...ws.Collection) {}

type nopBackup struct{}

func (nopBackup) Dispatch(backup.Record) {}

// Hooks bundles the post-commit side effects shared by the services
type Hooks struct {
	Notifier Notifier
	Backup   BackupSink
	Currency string
	Now      func() time.Time
}

func (h Hooks) withDefaults() Hooks {
	if h.Notifier == nil {
		h.Notifier = nopNotifier{}
	}
	if h.Backup == nil {
		h.Backup = nopBackup{}
	}
	if h.Currency == "" {
		h.Currency = "₹"
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	return h
}

func (h Hooks) today() string {
	return h.Now().Format(model.DateLayout)
}
