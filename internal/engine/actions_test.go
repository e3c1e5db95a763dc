package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		wantName string
		wantErr  string
	}{
		{name: "click", spec: "click element #accept-cookies", wantName: "click-element"},
		{name: "click with descendant selector", spec: "click element nav .menu > a", wantName: "click-element"},
		{name: "set field", spec: "set field #search to accessibility", wantName: "set-field"},
		{name: "wait for element", spec: "wait for element .app to be visible", wantName: "wait-for-element"},
		{name: "pause milliseconds", spec: "pause 500", wantName: "pause"},
		{name: "pause duration", spec: "pause 2s", wantName: "pause"},
		{name: "surrounding whitespace trimmed", spec: "  pause 1  ", wantName: "pause"},
		{name: "empty", spec: "", wantErr: "empty action"},
		{name: "blank", spec: "   ", wantErr: "empty action"},
		{name: "unknown verb", spec: "hover over #menu", wantErr: "unrecognized action"},
		{name: "bad pause duration", spec: "pause soon", wantErr: "invalid pause duration"},
		{name: "negative pause", spec: "pause -5s", wantErr: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, err := ParseAction(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, action.Name)
		})
	}
}

func TestParseActions(t *testing.T) {
	actions, err := ParseActions([]string{
		"click element #go",
		"set field #email to user@example.com",
		"pause 10",
	})
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "set-field", actions[1].Name)

	_, err = ParseActions([]string{"click element #go", "sing loudly"})
	require.Error(t, err)

	actions, err = ParseActions(nil)
	require.NoError(t, err)
	assert.Nil(t, actions)
}

func TestActionRunDispatch(t *testing.T) {
	session := &fakeSession{}

	click, err := ParseAction("click element #submit")
	require.NoError(t, err)
	require.NoError(t, click.Run(context.Background(), session))

	set, err := ParseAction("set field #name to Ada")
	require.NoError(t, err)
	require.NoError(t, set.Run(context.Background(), session))

	wait, err := ParseAction("wait for element #done to be visible")
	require.NoError(t, err)
	require.NoError(t, wait.Run(context.Background(), session))

	assert.Equal(t, []string{
		"click:#submit",
		"set:#name=Ada",
		"wait:#done",
	}, session.ops)
}

func TestPauseActionHonorsContext(t *testing.T) {
	pause, err := ParseAction("pause 10s")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = pause.Run(ctx, &fakeSession{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSetFieldValueMayContainTo(t *testing.T) {
	action, err := ParseAction("set field #note to go to the store")
	require.NoError(t, err)

	session := &fakeSession{}
	require.NoError(t, action.Run(context.Background(), session))
	assert.Equal(t, []string{"set:#note=go to the store"}, session.ops)
}
