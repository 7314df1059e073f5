package outbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which mutation a queued item mirrors.
type Kind string

const (
	KindCheckpointCreate Kind = "CHECKPOINT_CREATE"
	KindCheckpointUpdate Kind = "CHECKPOINT_UPDATE"
	KindCheckpointDelete Kind = "CHECKPOINT_DELETE"
	KindSessionUpload    Kind = "SESSION_UPLOAD"
)

var allKinds = []Kind{
	KindCheckpointCreate,
	KindCheckpointUpdate,
	KindCheckpointDelete,
	KindSessionUpload,
}

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, bool) {
	normalized := Kind(strings.ToUpper(strings.TrimSpace(value)))
	for _, kind := range allKinds {
		if kind == normalized {
			return kind, true
		}
	}
	return "", false
}

// Item is one pending outbound mutation. The payload is an opaque,
// self-describing snapshot of the triggering entity; CreatedAt defines the
// drain order, with ties broken by id.
type Item struct {
	ID        uuid.UUID
	Kind      Kind
	Payload   json.RawMessage
	CreatedAt time.Time
}

// NewItem builds a queue item with a fresh identity by serializing the given
// payload snapshot.
func NewItem(kind Kind, payload any) (Item, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Item{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Item{
		ID:        uuid.New(),
		Kind:      kind,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}
