package registry

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"cama/internal/logging"
	"cama/internal/outbox"
	"cama/internal/store"
	"cama/internal/survey"
)

// Recorder persists sampling sessions and hands finished ones to the outbox
// for upload. Sessions are saved whole; readings are replaced alongside the
// header in one transaction.
type Recorder struct {
	store  *store.Store
	queue  *outbox.Queue
	logger *slog.Logger
}

func NewRecorder(st *store.Store, queue *outbox.Queue, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  st,
		queue:  queue,
		logger: logging.WithComponent(logger, "recorder"),
	}
}

// Save persists the session header and its readings.
func (r *Recorder) Save(ctx context.Context, sess *survey.SamplingSession) error {
	if err := r.store.SaveSession(ctx, sess); err != nil {
		return err
	}
	r.logger.Info("session saved",
		logging.String(logging.FieldSessionID, sess.ID.String()),
		logging.Int(logging.FieldCount, len(sess.Readings)))
	return nil
}

// EnqueueUpload appends the session's full snapshot payload to the outbox.
// The caller decides when a session is ready; queuing an unfinished session
// is allowed and simply carries a null ended_at.
func (r *Recorder) EnqueueUpload(ctx context.Context, sess *survey.SamplingSession) error {
	item, err := outbox.NewItem(outbox.KindSessionUpload, sess.Payload())
	if err != nil {
		return err
	}
	if err := r.queue.Add(ctx, item); err != nil {
		return err
	}
	r.logger.Info("session queued for upload",
		logging.String(logging.FieldSessionID, sess.ID.String()),
		logging.String(logging.FieldItemID, item.ID.String()))
	return nil
}

// Load fetches a previously saved session with its readings in order.
func (r *Recorder) Load(ctx context.Context, id uuid.UUID) (*survey.SamplingSession, error) {
	return r.store.GetSession(ctx, id)
}
