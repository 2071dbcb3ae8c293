package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/hrygo/chatrelay/sharedstore"
)

const keyPrefix = "ai_job:"

func key(jobID string) string {
	return keyPrefix + jobID
}

// Registry persists job records as JSON in the shared store (§6.5).
type Registry struct {
	store sharedstore.Store
}

func NewRegistry(store sharedstore.Store) *Registry {
	return &Registry{store: store}
}

// CreateJob persists a new pending job and returns its id.
func (r *Registry) CreateJob(ctx context.Context, payload Payload) (string, error) {
	now := time.Now().Unix()
	rec := &Record{
		JobID:          uuid.NewString(),
		ConversationID: payload.ConversationID,
		LockID:         payload.LockID,
		Status:         StatusPending,
		Payload:        payload,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.write(ctx, rec); err != nil {
		return "", err
	}
	return rec.JobID, nil
}

// GetStatus returns the current record for jobID.
func (r *Registry) GetStatus(ctx context.Context, jobID string) (*Record, error) {
	raw, err := r.store.Get(ctx, key(jobID))
	if err != nil {
		if errors.Is(err, sharedstore.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "jobs: get")
	}
	rec := &Record{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, pkgerrors.Wrap(err, "jobs: unmarshal record")
	}
	return rec, nil
}

// StatusUpdate carries the optional fields UpdateStatus may set.
type StatusUpdate struct {
	Result           any
	Error            string
	ProcessingTimeMs int64
}

// UpdateStatus is a last-writer-wins mutation of the job's status and
// optional terminal fields.
func (r *Registry) UpdateStatus(ctx context.Context, jobID string, status Status, fields *StatusUpdate) error {
	rec, err := r.GetStatus(ctx, jobID)
	if err != nil {
		return err
	}
	if rec == nil {
		return pkgerrors.Errorf("jobs: job not found: %s", jobID)
	}

	rec.Status = status
	rec.UpdatedAt = time.Now().Unix()
	if fields != nil {
		if fields.Result != nil {
			rec.Result = fields.Result
		}
		if fields.Error != "" {
			rec.Error = fields.Error
		}
		if fields.ProcessingTimeMs != 0 {
			rec.ProcessingTimeMs = fields.ProcessingTimeMs
		}
	}
	return r.write(ctx, rec)
}

// CancelJob sets status=cancelled. Returns false if the job does not exist.
func (r *Registry) CancelJob(ctx context.Context, jobID string) (bool, error) {
	rec, err := r.GetStatus(ctx, jobID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}
	if rec.IsTerminal() {
		return true, nil
	}
	rec.Status = StatusCancelled
	rec.UpdatedAt = time.Now().Unix()
	if err := r.write(ctx, rec); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) write(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(err, "jobs: marshal record")
	}
	if err := r.store.Set(ctx, key(rec.JobID), raw, TTL); err != nil {
		return pkgerrors.Wrap(err, "jobs: set")
	}
	return nil
}
