package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubFanOutAndUnsubscribe(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish(Make(TypeRecordCreated, map[string]string{"source": "lever"}))
	require.Len(t, a, 1)
	require.Len(t, b, 1)

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(<-a), &evt))
	assert.Equal(t, TypeRecordCreated, evt.Type)
	assert.False(t, evt.At.IsZero())

	h.Unsubscribe(b)
	_, open := <-b
	assert.False(t, open)

	// publishing after an unsubscribe reaches the remaining client only
	h.Publish(Make(TypeRunFinished, nil))
	assert.Len(t, a, 1)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	// fill the buffer and one more; the overflow is dropped, not blocking
	for i := 0; i < cap(ch)+1; i++ {
		h.Publish(Make(TypeSweepFinished, nil))
	}
	assert.Len(t, ch, cap(ch))
}
