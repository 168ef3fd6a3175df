package gateway

import (
	"context"

	"github.com/tickforge/tickforge/internal/model"
)

// Venue executes order intents against a trading destination. Execute
// must return a terminal execution or an error, never both silently
// dropped; the gateway converts errors into rejected executions so
// every intent ends with exactly one execution.
type Venue interface {
	Name() string
	Execute(ctx context.Context, intent model.OrderIntent) (model.OrderExecution, error)
}
