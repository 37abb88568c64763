package ports

import (
	"context"
)

// Envelope is one raw evidence object as captured from the upstream
// assistant API, paired with the insight it belongs to. Payload is owned by
// the envelope's consumer for reading only; the normalizer never mutates it.
type Envelope struct {
	InsightID string
	Payload   map[string]interface{}
}

// EvidenceSource yields captured evidence payloads for batch normalization.
type EvidenceSource interface {
	Read(ctx context.Context) ([]Envelope, error)
}
