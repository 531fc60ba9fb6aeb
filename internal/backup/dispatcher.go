package backup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"agristock/internal/logger"
	"agristock/internal/model"
	"agristock/internal/repository"
)

// Dispatcher hands records to a Replicator on a detached goroutine.
// Callers never wait on delivery and never see its errors; failures are
// logged and kept in the replication_failures table.
type Dispatcher struct {
	replicator Replicator
	failures   repository.ReplicationFailureRepository
	timeout    time.Duration

	wg  sync.WaitGroup
	log zerolog.Logger
}

// NewDispatcher returns a dispatcher. A nil replicator disables backup.
func NewDispatcher(r Replicator, failures repository.ReplicationFailureRepository) *Dispatcher {
	return &Dispatcher{
		replicator: r,
		failures:   failures,
		timeout:    15 * time.Second,
		log:        logger.WithComponent("backup"),
	}
}

func (d *Dispatcher) Enabled() bool {
	return d != nil && d.replicator != nil
}

// Dispatch queues rec for delivery and returns immediately
func (d *Dispatcher) Dispatch(rec Record) {
	if !d.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("type", string(rec.Type)).Msg("backup delivery panicked")
			}
		}()
		d.deliver(rec)
	}()
}

// Wait blocks until queued deliveries finish. Used on shutdown and in tests.
func (d *Dispatcher) Wait() {
	if d != nil {
		d.wg.Wait()
	}
}

func (d *Dispatcher) deliver(rec Record) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.replicator.Replicate(ctx, rec)
	if err == nil {
		d.log.Debug().Str("type", string(rec.Type)).Str("id", rec.ID).Msg("backup delivered")
		return
	}

	d.log.Warn().Err(err).Str("type", string(rec.Type)).Str("id", rec.ID).Msg("backup replication failed")
	d.recordFailure(rec, err)
}

func (d *Dispatcher) recordFailure(rec Record, cause error) {
	if d.failures == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		d.log.Error().Err(err).Msg("encode failed backup record")
		return
	}
	f := &model.ReplicationFailure{
		Type:     string(rec.Type),
		RecordID: rec.ID,
		Payload:  datatypes.JSON(payload),
		Error:    cause.Error(),
		Attempts: 1,
	}
	if err := d.failures.Create(f); err != nil {
		d.log.Error().Err(err).Str("type", string(rec.Type)).Msg("persist replication failure")
	}
}

// RetryFailures re-sends unresolved failures synchronously and returns how
// many were delivered
func (d *Dispatcher) RetryFailures(ctx context.Context, limit int) (int, error) {
	if !d.Enabled() || d.failures == nil {
		return 0, nil
	}
	pending, err := d.failures.FindUnresolved(limit)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, f := range pending {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		var rec Record
		if err := json.Unmarshal(f.Payload, &rec); err != nil {
			d.log.Error().Err(err).Uint("failure_id", f.ID).Msg("undecodable replication payload")
			continue
		}
		if err := d.replicator.Replicate(ctx, rec); err != nil {
			if err := d.failures.RecordAttempt(f.ID, err.Error()); err != nil {
				return delivered, err
			}
			continue
		}
		if err := d.failures.MarkResolved(f.ID); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}
