package registry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"cama/internal/logging"
	"cama/internal/outbox"
	"cama/internal/services"
	"cama/internal/survey"
	"cama/internal/testsupport"
)

func newTestRegistry(t *testing.T) (*Registry, *outbox.Queue) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return NewRegistry(st, logging.NewNop()), outbox.NewQueue(st)
}

func TestCreatePersistsAndQueues(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Create(ctx, "Sump entrance", survey.PassageCanyon, "A1", 12.5, 3.25)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("Create returned nil id")
	}

	listed, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 checkpoint, got %d", len(listed))
	}
	cp := listed[0]
	if cp.ID != id || cp.Name != "Sump entrance" || cp.PassageType != survey.PassageCanyon {
		t.Fatalf("listed checkpoint mismatch: %+v", cp)
	}
	if cp.DepthFromEntrance != 12.5 || cp.DistanceFromStation != 3.25 {
		t.Fatalf("listed measurements mismatch: %+v", cp)
	}

	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("expected 1 queued item, got %d", depth)
	}

	items, err := queue.TakeBatch(ctx, 0)
	if err != nil {
		t.Fatalf("TakeBatch: %v", err)
	}
	if items[0].Kind != outbox.KindCheckpointCreate {
		t.Fatalf("expected %s, got %s", outbox.KindCheckpointCreate, items[0].Kind)
	}
	var payload survey.CheckpointPayload
	if err := json.Unmarshal(items[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ID != id.String() || payload.PassageType != string(survey.PassageCanyon) {
		t.Fatalf("payload mismatch: %+v", payload)
	}
}

func TestCreateValidationLeavesNothingBehind(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Create(ctx, "Bad depth", survey.PassagePit, "B5", -1, 0)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	listed, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("store should be untouched, found %d checkpoints", len(listed))
	}
	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 0 {
		t.Fatalf("queue should be untouched, found %d items", depth)
	}
}

func TestUpdateAppliesKnownFieldsOnly(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Create(ctx, "Junction", survey.PassageRoom, "C12", 40, 1.5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = reg.Update(ctx, id, FieldPatch{
		"name":                "Junction room",
		"passage_type":        "KEYHOLE",
		"depth_from_entrance": 41.25,
		"bogus_field":         "ignored",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	listed, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	cp := listed[0]
	if cp.Name != "Junction room" || cp.PassageType != survey.PassageKeyhole || cp.DepthFromEntrance != 41.25 {
		t.Fatalf("update not applied: %+v", cp)
	}
	if cp.SurveyStationID != "C12" || cp.DistanceFromStation != 1.5 {
		t.Fatalf("untouched fields changed: %+v", cp)
	}
	if !cp.UpdatedAt.After(cp.CreatedAt) && !cp.UpdatedAt.Equal(cp.CreatedAt) {
		t.Fatalf("updated_at not advanced: created=%v updated=%v", cp.CreatedAt, cp.UpdatedAt)
	}

	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 2 {
		t.Fatalf("expected create + update queued, got %d", depth)
	}
}

func TestUpdateValidationFailureKeepsPriorState(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Create(ctx, "Ledge", survey.PassageCrawl, "A1", 8, 0.5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = reg.Update(ctx, id, FieldPatch{"depth_from_entrance": -3.0})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	listed, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].DepthFromEntrance != 8 {
		t.Fatalf("prior state lost: %+v", listed[0])
	}
	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("failed update must not queue, got %d items", depth)
	}
}

func TestUpdateUnknownIDFailsNotFound(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.Update(context.Background(), uuid.New(), FieldPatch{"name": "ghost"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateResolvesFromStoreWithoutCache(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := NewRegistry(st, logging.NewNop())
	id, err := first.Create(ctx, "Dome", survey.PassageTube, "Z78", 60, 2)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Fresh registry with a cold cache must still find the persisted entity.
	second := NewRegistry(st, logging.NewNop())
	if err := second.Update(ctx, id, FieldPatch{"name": "Dome chamber"}); err != nil {
		t.Fatalf("Update via cold cache: %v", err)
	}

	listed, err := second.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed[0].Name != "Dome chamber" {
		t.Fatalf("update lost: %+v", listed[0])
	}
}

func TestDeleteQueuesIDOnlyPayload(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	id, err := reg.Create(ctx, "Dead end", survey.PassageCrawl, "B5", 3, 0.1)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := reg.Delete(ctx, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	listed, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("checkpoint not removed: %+v", listed)
	}

	items, err := queue.TakeBatch(ctx, 0)
	if err != nil {
		t.Fatalf("TakeBatch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected create + delete queued, got %d", len(items))
	}
	del := items[1]
	if del.Kind != outbox.KindCheckpointDelete {
		t.Fatalf("expected %s, got %s", outbox.KindCheckpointDelete, del.Kind)
	}
	var raw map[string]any
	if err := json.Unmarshal(del.Payload, &raw); err != nil {
		t.Fatalf("unmarshal delete payload: %v", err)
	}
	if len(raw) != 1 || raw["id"] != id.String() {
		t.Fatalf("delete payload must carry only the id: %v", raw)
	}
}

func TestDeleteAbsentIsIdempotent(t *testing.T) {
	reg, queue := newTestRegistry(t)
	ctx := context.Background()

	if err := reg.Delete(ctx, uuid.New()); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("Depth: %v", err)
	}
	if depth != 1 {
		t.Fatalf("delete should still queue its stub, got %d", depth)
	}
}

func TestRecorderSaveAndEnqueue(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	queue := outbox.NewQueue(st)
	rec := NewRecorder(st, queue, logging.NewNop())
	ctx := context.Background()

	sess := survey.NewSession("A1")
	sess.AddReading(survey.GasReading{O2Pct: 20.9, COPpm: 1, H2SPpm: 0, LELPct: 0})
	sess.AddReading(survey.GasReading{O2Pct: 19.4, COPpm: 3, H2SPpm: 1, LELPct: 0.2, CapturedAt: time.Now().UTC()})
	sess.End()

	if err := rec.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := rec.EnqueueUpload(ctx, sess); err != nil {
		t.Fatalf("EnqueueUpload: %v", err)
	}

	loaded, err := rec.Load(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || len(loaded.Readings) != 2 {
		t.Fatalf("loaded session mismatch: %+v", loaded)
	}
	if loaded.EndedAt == nil {
		t.Fatal("ended_at lost on round trip")
	}

	items, err := queue.TakeBatch(ctx, 0)
	if err != nil {
		t.Fatalf("TakeBatch: %v", err)
	}
	if len(items) != 1 || items[0].Kind != outbox.KindSessionUpload {
		t.Fatalf("expected one session_upload item, got %+v", items)
	}
	var payload survey.SessionPayload
	if err := json.Unmarshal(items[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal session payload: %v", err)
	}
	if payload.ReadingCount != 2 || payload.SchemaVersion != survey.SessionSchemaVersion {
		t.Fatalf("session payload mismatch: %+v", payload)
	}
}
