// Package gateway abstracts over the heterogeneous plant-side transports.
// It exposes one capability contract with exactly two implementations: a
// line-oriented TCP protocol and an HTTP/JSON protocol. Which one serves a
// given plant is decided by the plant's gateway type tag through a Registry.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenloop/dumpster-coordination/internal/model"
)

// ErrUnknownGateway is returned when a plant carries a gateway type tag that
// no adapter was registered for. This is a configuration error, not a
// transient condition.
var ErrUnknownGateway = errors.New("unknown gateway type")

// PlantGateway is the protocol-agnostic contract the orchestrator speaks.
// Both implementations must produce identical logical outcomes for identical
// logical inputs; only the wire representation differs.
//
// A zero date means "let the plant default to its own current date".
type PlantGateway interface {
	// GetCapacity returns the plant's available capacity in tons for a date.
	GetCapacity(ctx context.Context, plant *model.Plant, date time.Time) (float64, error)

	// NotifyIncoming tells the plant that dumpsters are committed to arrive
	// on a date. Adapters perform no retries; retry policy belongs to callers.
	NotifyIncoming(ctx context.Context, plant *model.Plant, dumpsterIDs []string, totalContainers int, date time.Time) error
}

// Registry is a fixed lookup table from gateway type tag to adapter, built
// once at startup.
type Registry struct {
	gateways map[string]PlantGateway
}

// NewRegistry constructs a Registry over the given tag → adapter map.
func NewRegistry(gateways map[string]PlantGateway) *Registry {
	return &Registry{gateways: gateways}
}

// Lookup resolves the adapter for a gateway type tag. An unknown tag fails
// fast with ErrUnknownGateway; there is intentionally no default adapter.
func (r *Registry) Lookup(gatewayType string) (PlantGateway, error) {
	gw, ok := r.gateways[gatewayType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGateway, gatewayType)
	}
	return gw, nil
}
