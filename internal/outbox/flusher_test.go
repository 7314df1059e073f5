package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"cama/internal/logging"
	"cama/internal/outbox"
	"cama/internal/services"
	"cama/internal/survey"
	"cama/internal/testsupport"
)

func newQueue(t *testing.T) *outbox.Queue {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return outbox.NewQueue(st)
}

func enqueueCheckpoints(t *testing.T, queue *outbox.Queue, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		cp := survey.NewCheckpoint(fmt.Sprintf("CP%d", i), survey.PassageCanyon, "A1", float64(i), 0)
		item, err := outbox.NewItem(outbox.KindCheckpointCreate, cp.Payload())
		if err != nil {
			t.Fatalf("NewItem: %v", err)
		}
		if err := queue.Add(ctx, item); err != nil {
			t.Fatalf("queue.Add: %v", err)
		}
	}
}

func TestFlushRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			ctx := context.Background()
			queue := newQueue(t)
			sink := outbox.NewFileSink(t.TempDir() + "/outbox.json")
			flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 50)

			enqueueCheckpoints(t, queue, n)

			flushed, err := flusher.Flush(ctx)
			if err != nil {
				t.Fatalf("Flush: %v", err)
			}
			if flushed != n {
				t.Fatalf("flushed %d, want %d", flushed, n)
			}

			entries, err := sink.Load(ctx)
			if err != nil {
				t.Fatalf("sink.Load: %v", err)
			}
			if len(entries) != n {
				t.Fatalf("sink holds %d entries, want %d", len(entries), n)
			}
			depth, err := queue.Depth(ctx)
			if err != nil {
				t.Fatalf("queue.Depth: %v", err)
			}
			if depth != 0 {
				t.Fatalf("queue depth %d after flush, want 0", depth)
			}
		})
	}
}

func TestFlushPartialBatch(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	sink := outbox.NewFileSink(t.TempDir() + "/outbox.json")
	flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 3)

	enqueueCheckpoints(t, queue, 5)

	if flushed, err := flusher.Flush(ctx); err != nil || flushed != 3 {
		t.Fatalf("first flush: got %d err=%v, want 3", flushed, err)
	}
	if flushed, err := flusher.Flush(ctx); err != nil || flushed != 2 {
		t.Fatalf("second flush drains the partial batch: got %d err=%v, want 2", flushed, err)
	}
	if flushed, err := flusher.Flush(ctx); err != nil || flushed != 0 {
		t.Fatalf("empty queue flush: got %d err=%v, want 0", flushed, err)
	}
}

func TestFlushPreservesDrainOrder(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	sink := outbox.NewFileSink(t.TempDir() + "/outbox.json")
	flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 50)

	enqueueCheckpoints(t, queue, 4)
	if _, err := flusher.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	entries, err := sink.Load(ctx)
	if err != nil {
		t.Fatalf("sink.Load: %v", err)
	}
	for i, entry := range entries {
		var payload survey.CheckpointPayload
		if err := json.Unmarshal(entry.Payload, &payload); err != nil {
			t.Fatalf("unmarshal entry %d: %v", i, err)
		}
		if payload.Name != fmt.Sprintf("CP%d", i) {
			t.Fatalf("entry %d out of order: %q", i, payload.Name)
		}
	}
}

// failingSink refuses a configurable number of appends, then delegates.
type failingSink struct {
	inner     outbox.Sink
	remaining int
}

func (s *failingSink) Append(ctx context.Context, entries []outbox.Entry) error {
	if s.remaining > 0 {
		s.remaining--
		return services.Wrap(services.ErrSinkWrite, "sink", "append", "simulated interruption", nil)
	}
	return s.inner.Append(ctx, entries)
}

func TestFlushSinkFailureLeavesBatchQueued(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	file := outbox.NewFileSink(t.TempDir() + "/outbox.json")
	sink := &failingSink{inner: file, remaining: 1}
	flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 50)

	enqueueCheckpoints(t, queue, 3)

	if _, err := flusher.Flush(ctx); !errors.Is(err, services.ErrSinkWrite) {
		t.Fatalf("expected sink write failure, got %v", err)
	}
	depth, err := queue.Depth(ctx)
	if err != nil {
		t.Fatalf("queue.Depth: %v", err)
	}
	if depth != 3 {
		t.Fatalf("batch must remain queued after sink failure, depth=%d", depth)
	}
	entries, err := file.Load(ctx)
	if err != nil {
		t.Fatalf("sink.Load: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("sink must be untouched after failed append, got %d entries", len(entries))
	}
}

func TestFlushRetryAfterInterruptionDeliversExactlyOnce(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	file := outbox.NewFileSink(t.TempDir() + "/outbox.json")
	sink := &failingSink{inner: file, remaining: 1}
	flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 50)

	enqueueCheckpoints(t, queue, 4)

	if _, err := flusher.Flush(ctx); err == nil {
		t.Fatal("expected first flush to fail")
	}
	flushed, err := flusher.Flush(ctx)
	if err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if flushed != 4 {
		t.Fatalf("retry flushed %d, want 4", flushed)
	}

	entries, err := file.Load(ctx)
	if err != nil {
		t.Fatalf("sink.Load: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected exactly one copy of each item, got %d entries", len(entries))
	}
	seen := map[string]bool{}
	for _, entry := range entries {
		if seen[entry.ID] {
			t.Fatalf("duplicate entry %s in sink", entry.ID)
		}
		seen[entry.ID] = true
	}
}

func TestConcurrentFlushesDoNotDoubleDeliver(t *testing.T) {
	ctx := context.Background()
	queue := newQueue(t)
	sink := outbox.NewFileSink(t.TempDir() + "/outbox.json")
	flusher := outbox.NewFlusher(queue, sink, logging.NewNop(), 50)

	enqueueCheckpoints(t, queue, 10)

	results := make(chan int, 4)
	for i := 0; i < 4; i++ {
		go func() {
			flushed, err := flusher.Flush(ctx)
			if err != nil {
				t.Errorf("Flush: %v", err)
			}
			results <- flushed
		}()
	}
	total := 0
	for i := 0; i < 4; i++ {
		total += <-results
	}
	if total != 10 {
		t.Fatalf("flushed %d items across concurrent invocations, want 10", total)
	}

	entries, err := sink.Load(ctx)
	if err != nil {
		t.Fatalf("sink.Load: %v", err)
	}
	if len(entries) != 10 {
		t.Fatalf("sink holds %d entries, want 10", len(entries))
	}
}
