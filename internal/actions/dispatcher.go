package actions

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/studio"
)

// ConfirmFunc is the confirmation gate: it resolves to true when the user
// approves the action. Supplied at dispatcher construction; a nil gate makes
// every confirmable action fail with a configuration error rather than
// silently proceeding.
type ConfirmFunc func(ctx context.Context, action models.Action) (bool, error)

// ExecutionResult is the outcome of one action
type ExecutionResult struct {
	Action  models.Action `json:"action"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// BatchResult aggregates an ordered batch. AllSucceeded is true only when
// every input action was attempted and succeeded.
type BatchResult struct {
	Results      []ExecutionResult `json:"results"`
	AllSucceeded bool              `json:"all_succeeded"`
}

// Dispatcher routes parsed actions to their handlers. Its contract is
// routing, confirmation and error containment; the mutation logic itself
// lives in the studio engines.
type Dispatcher struct {
	registry *Registry
	engines  studio.Engines
	confirm  ConfirmFunc
}

// NewDispatcher builds a dispatcher over the given engines. confirm may be
// nil when the caller guarantees no action carries requires_confirmation.
func NewDispatcher(registry *Registry, engines studio.Engines, confirm ConfirmFunc) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		engines:  engines,
		confirm:  confirm,
	}
}

// ExecuteOne runs a single action: confirmation first, then registry
// lookup, parameter validation and handler dispatch. Nothing escapes this
// boundary: unknown kinds, validation failures, handler errors and handler
// panics all come back as failed results.
func (d *Dispatcher) ExecuteOne(ctx context.Context, action models.Action) ExecutionResult {
	if action.RequiresConfirmation {
		if d.confirm == nil {
			log.Printf("⚠️  Dispatch: %s requires confirmation but no gate is configured", action.Kind)
			return failure(action, "confirmation gate not configured")
		}
		confirmed, err := d.confirm(ctx, action)
		if err != nil {
			return failure(action, fmt.Sprintf("confirmation failed: %v", err))
		}
		if !confirmed {
			log.Printf("🚫 Dispatch: user declined %s", action.Kind)
			return failure(action, "action declined by user")
		}
	}

	spec, ok := d.registry.Lookup(action.Kind)
	if !ok {
		return failure(action, fmt.Sprintf("unknown action type: %s", action.Kind))
	}

	if err := d.registry.Validate(action.Kind, action.Parameters); err != nil {
		return failure(action, err.Error())
	}

	if err := d.runHandler(ctx, spec, action.Parameters); err != nil {
		log.Printf("❌ Dispatch: %s failed: %v", action.Kind, err)
		return failure(action, err.Error())
	}

	return ExecutionResult{Action: action, Success: true}
}

// ExecuteBatch runs actions strictly in order and stops at the first
// failure; remaining actions are not attempted. A batch that depends on an
// earlier action's effect must not proceed past a failure.
func (d *Dispatcher) ExecuteBatch(ctx context.Context, batch []models.Action) BatchResult {
	result := BatchResult{AllSucceeded: true}

	for _, action := range batch {
		r := d.ExecuteOne(ctx, action)
		result.Results = append(result.Results, r)
		if !r.Success {
			result.AllSucceeded = false
			break
		}
	}

	return result
}

// runHandler invokes the handler with panic containment
func (d *Dispatcher) runHandler(ctx context.Context, spec Spec, params map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Dispatch: PANIC in %s handler: %v", spec.Kind, r)
			log.Printf("   Stack trace:\n%s", string(debug.Stack()))
			err = fmt.Errorf("%v", r)
		}
	}()
	return spec.Handler(ctx, d.engines, params)
}

func failure(action models.Action, msg string) ExecutionResult {
	return ExecutionResult{Action: action, Success: false, Error: msg}
}
