package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current State
		sig     Signals
		want    State
	}{
		{"idle stays idle", Idle, Signals{}, Idle},
		{"idle with input analyzes", Idle, Signals{PendingInput: true}, Analyze},

		{"analyze with tool calls enters task", Analyze, Signals{ToolCalls: true}, InTask},
		{"analyze with task start enters task", Analyze, Signals{TaskStarted: true}, InTask},
		{"analyze resolving to content idles", Analyze, Signals{Content: true}, Idle},

		{"in task keeps calling tools", InTask, Signals{ToolCalls: true}, InTask},
		{"in task mechanical result auto continues", InTask, Signals{ToolCalls: true, Mechanical: true}, AutoContinue},
		{"in task completion idles", InTask, Signals{TaskCompleted: true}, Idle},
		{"in task finishing content idles", InTask, Signals{Content: true}, Idle},

		{"in task with new input re-analyzes", InTask, Signals{PendingInput: true}, Analyze},

		{"auto continue keeps going", AutoContinue, Signals{ToolCalls: true, Mechanical: true}, AutoContinue},
		{"auto continue with new input re-analyzes", AutoContinue, Signals{PendingInput: true}, Analyze},
		{"auto continue back to task", AutoContinue, Signals{ToolCalls: true}, InTask},
		{"auto continue completion idles", AutoContinue, Signals{TaskCompleted: true}, Idle},
		{"auto continue content idles", AutoContinue, Signals{Content: true}, Idle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.current, tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextIsPure(t *testing.T) {
	sig := Signals{ToolCalls: true, Mechanical: true}
	first, err := Next(InTask, sig)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := Next(InTask, sig)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestNextUnknownStateFails(t *testing.T) {
	_, err := Next(State(42), Signals{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transition")
}

func TestContinues(t *testing.T) {
	assert.False(t, Idle.Continues())
	assert.False(t, Analyze.Continues())
	assert.True(t, InTask.Continues())
	assert.True(t, AutoContinue.Continues())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "auto_continue", AutoContinue.String())
	assert.Equal(t, "state(42)", State(42).String())
}
