package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cama/internal/logging"
	"cama/internal/outbox"
	"cama/internal/services"
	"cama/internal/store"
	"cama/internal/survey"
)

// Registry is the single entry point for mutating checkpoints. Every
// accepted mutation is validated, durably persisted, and queued for sync as
// one atomic unit; the entity write and its queue entry share a store
// transaction.
type Registry struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex
	cache map[uuid.UUID]survey.Checkpoint
}

// NewRegistry builds a registry over the given store.
func NewRegistry(st *store.Store, logger *slog.Logger) *Registry {
	return &Registry{
		store:  st,
		logger: logging.WithComponent(logger, "registry"),
		cache:  make(map[uuid.UUID]survey.Checkpoint),
	}
}

// FieldPatch is a partial update keyed by payload field name. Unknown field
// names are ignored rather than rejected so older callers keep working
// against newer schemas.
type FieldPatch map[string]any

// Create constructs, validates, persists, and enqueues a new checkpoint,
// returning its generated id. Validation failures perform no persistence or
// queuing.
func (r *Registry) Create(ctx context.Context, name string, passageType survey.PassageType, stationID string, depth, distance float64) (uuid.UUID, error) {
	cp := survey.NewCheckpoint(name, passageType, stationID, depth, distance)
	if violations := survey.ValidateCheckpoint(cp); len(violations) > 0 {
		return uuid.Nil, services.NewValidationError(violations)
	}

	item, err := outbox.NewItem(outbox.KindCheckpointCreate, cp.Payload())
	if err != nil {
		return uuid.Nil, err
	}
	if err := r.store.SaveCheckpointWithQueue(ctx, cp, item); err != nil {
		return uuid.Nil, err
	}

	r.mu.Lock()
	r.cache[cp.ID] = cp
	r.mu.Unlock()

	r.logger.Info("checkpoint created",
		logging.String(logging.FieldCheckpointID, cp.ID.String()),
		logging.String("passage_type", string(cp.PassageType)))
	return cp.ID, nil
}

// Update applies a field patch to an existing checkpoint, re-validates, then
// persists and enqueues the full post-update snapshot. The current entity is
// resolved cache-first with a store scan fallback; a miss in both fails with
// not found. Validation failure aborts with prior state untouched.
func (r *Registry) Update(ctx context.Context, id uuid.UUID, updates FieldPatch) error {
	cp, err := r.resolve(ctx, id)
	if err != nil {
		return err
	}

	if err := applyPatch(&cp, updates); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()

	if violations := survey.ValidateCheckpoint(cp); len(violations) > 0 {
		return services.NewValidationError(violations)
	}

	item, err := outbox.NewItem(outbox.KindCheckpointUpdate, cp.Payload())
	if err != nil {
		return err
	}
	if err := r.store.SaveCheckpointWithQueue(ctx, cp, item); err != nil {
		return err
	}

	r.mu.Lock()
	r.cache[cp.ID] = cp
	r.mu.Unlock()

	r.logger.Info("checkpoint updated", logging.String(logging.FieldCheckpointID, cp.ID.String()))
	return nil
}

// Delete removes a checkpoint from the store and cache and enqueues the
// id-only delete stub. Deleting an absent id still enqueues, matching the
// store's idempotent delete semantics.
func (r *Registry) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := outbox.NewItem(outbox.KindCheckpointDelete, survey.DeletePayload{ID: id.String()})
	if err != nil {
		return err
	}
	if err := r.store.DeleteCheckpointWithQueue(ctx, id, item); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.cache, id)
	r.mu.Unlock()

	r.logger.Info("checkpoint deleted", logging.String(logging.FieldCheckpointID, id.String()))
	return nil
}

// List returns all persisted checkpoints directly from the store. Bulk reads
// never trust the cache.
func (r *Registry) List(ctx context.Context) ([]survey.Checkpoint, error) {
	return r.store.ListCheckpoints(ctx)
}

// resolve looks up the current entity: cache first, then a full store scan.
// The cache is an optimization, never authoritative; divergence resolves in
// favor of the store on the next write.
func (r *Registry) resolve(ctx context.Context, id uuid.UUID) (survey.Checkpoint, error) {
	r.mu.Lock()
	cp, ok := r.cache[id]
	r.mu.Unlock()
	if ok {
		return cp, nil
	}

	listed, err := r.store.ListCheckpoints(ctx)
	if err != nil {
		return survey.Checkpoint{}, err
	}
	for _, candidate := range listed {
		if candidate.ID == id {
			return candidate, nil
		}
	}
	return survey.Checkpoint{}, services.Wrap(services.ErrNotFound, "registry", "resolve checkpoint", id.String(), nil)
}

func applyPatch(cp *survey.Checkpoint, updates FieldPatch) error {
	for field, value := range updates {
		switch field {
		case "name":
			s, err := stringValue(field, value)
			if err != nil {
				return err
			}
			cp.Name = s
		case "passage_type":
			s, err := stringValue(field, value)
			if err != nil {
				return err
			}
			pt, ok := survey.ParsePassageType(s)
			if !ok {
				return services.NewValidationError([]string{fmt.Sprintf("passage_type: unknown value %q", s)})
			}
			cp.PassageType = pt
		case "survey_station_id":
			s, err := stringValue(field, value)
			if err != nil {
				return err
			}
			cp.SurveyStationID = s
		case "depth_from_entrance":
			f, err := floatValue(field, value)
			if err != nil {
				return err
			}
			cp.DepthFromEntrance = f
		case "distance_from_station":
			f, err := floatValue(field, value)
			if err != nil {
				return err
			}
			cp.DistanceFromStation = f
		default:
			// Unknown field names are ignored for forward compatibility.
		}
	}
	return nil
}

func stringValue(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", services.NewValidationError([]string{fmt.Sprintf("%s: expected string, got %T", field, value)})
	}
	return s, nil
}

func floatValue(field string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, services.NewValidationError([]string{fmt.Sprintf("%s: expected number, got %T", field, value)})
	}
}
