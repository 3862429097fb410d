package actions

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawless-studio/studio-api/internal/models"
	"github.com/dawless-studio/studio-api/internal/studio"
)

func testEngines() studio.Engines {
	return studio.NewMemory(models.ProjectState{
		Instruments: []models.Instrument{
			{ID: "bass-1", Type: "synth", Role: "bass"},
			{ID: "lead-1", Type: "synth", Role: "lead"},
		},
	}).Engines()
}

func approveAll(_ context.Context, _ models.Action) (bool, error) {
	return true, nil
}

func declineAll(_ context.Context, _ models.Action) (bool, error) {
	return false, nil
}

func TestExecuteOneSuccess(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind: "set_parameter",
		Parameters: map[string]any{
			"instrument_id": "bass-1",
			"parameter":     "cutoff",
			"value":         0.3,
		},
	})

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
}

func TestExecuteOneUnknownKind(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:       "teleport",
		Parameters: map[string]any{},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "unknown action type: teleport", result.Error)
}

func TestExecuteOneMissingParameter(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind: "set_parameter",
		Parameters: map[string]any{
			"instrument_id": "bass-1",
			// parameter and value intentionally omitted
		},
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "missing required parameter")
}

func TestExecuteOneConfirmationDeclined(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), declineAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:                 "set_tempo",
		Parameters:           map[string]any{"bpm": 140.0},
		RequiresConfirmation: true,
	})

	assert.False(t, result.Success)
	assert.Equal(t, "action declined by user", result.Error)
}

func TestExecuteOneConfirmationApproved(t *testing.T) {
	engines := testEngines()
	d := NewDispatcher(NewRegistry(), engines, approveAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:                 "set_tempo",
		Parameters:           map[string]any{"bpm": 140.0},
		RequiresConfirmation: true,
	})

	require.True(t, result.Success)
	assert.Equal(t, 140.0, engines.Project.(*studio.Memory).Tempo())
}

func TestExecuteOneNilGateFailsConfirmableAction(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), nil)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:                 "set_tempo",
		Parameters:           map[string]any{"bpm": 140.0},
		RequiresConfirmation: true,
	})

	assert.False(t, result.Success)
	assert.Equal(t, "confirmation gate not configured", result.Error)
}

func TestExecuteOneNilGateAllowsUnflaggedAction(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), nil)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind: "set_parameter",
		Parameters: map[string]any{
			"instrument_id": "bass-1",
			"parameter":     "resonance",
			"value":         0.7,
		},
	})

	assert.True(t, result.Success)
}

func TestExecuteOneConfirmationError(t *testing.T) {
	failingGate := func(_ context.Context, _ models.Action) (bool, error) {
		return false, fmt.Errorf("dialog closed")
	}
	d := NewDispatcher(NewRegistry(), testEngines(), failingGate)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:                 "set_tempo",
		Parameters:           map[string]any{"bpm": 90.0},
		RequiresConfirmation: true,
	})

	assert.False(t, result.Success)
	assert.Equal(t, "confirmation failed: dialog closed", result.Error)
}

func TestExecuteOneHandlerPanicIsContained(t *testing.T) {
	registry := NewRegistry()
	registry.register(Spec{
		Kind:        "explode",
		Description: "panics on dispatch",
		Handler: func(_ context.Context, _ studio.Engines, _ map[string]any) error {
			panic("boom")
		},
	})
	d := NewDispatcher(registry, testEngines(), approveAll)

	result := d.ExecuteOne(context.Background(), models.Action{
		Kind:       "explode",
		Parameters: map[string]any{},
	})

	assert.False(t, result.Success)
	assert.Equal(t, "boom", result.Error)
}

func TestExecuteBatchStopsAtFirstFailure(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	batch := []models.Action{
		{Kind: "set_parameter", Parameters: map[string]any{
			"instrument_id": "bass-1", "parameter": "cutoff", "value": 0.5,
		}},
		{Kind: "set_parameter", Parameters: map[string]any{
			"instrument_id": "ghost", "parameter": "cutoff", "value": 0.5,
		}},
		// Never reached
		{Kind: "set_parameter", Parameters: map[string]any{
			"instrument_id": "lead-1", "parameter": "cutoff", "value": 0.5,
		}},
	}

	result := d.ExecuteBatch(context.Background(), batch)

	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.False(t, result.Results[1].Success)
	assert.False(t, result.AllSucceeded)
}

func TestExecuteBatchAllSucceed(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	batch := []models.Action{
		{Kind: "set_tempo", Parameters: map[string]any{"bpm": 128.0}},
		{Kind: "add_marker", Parameters: map[string]any{
			"position": 0.0, "label": "intro", "type": "section",
		}},
		{Kind: "route_cable", Parameters: map[string]any{
			"from": "bass-1", "to": "lead-1", "type": "midi",
		}},
	}

	result := d.ExecuteBatch(context.Background(), batch)

	require.Len(t, result.Results, 3)
	assert.True(t, result.AllSucceeded)
	for _, r := range result.Results {
		assert.True(t, r.Success)
	}
}

func TestExecuteBatchEmpty(t *testing.T) {
	d := NewDispatcher(NewRegistry(), testEngines(), approveAll)

	result := d.ExecuteBatch(context.Background(), nil)

	assert.Empty(t, result.Results)
	assert.True(t, result.AllSucceeded)
}
