package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHubDeliversLatestSnapshot(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe("conv-a")
	defer sub.Close()

	hub.Publish(Snapshot{ConversationID: "conv-a", Messages: []Message{{ID: "1"}}})
	hub.Publish(Snapshot{ConversationID: "conv-a", Messages: []Message{{ID: "1"}, {ID: "2"}}})
	hub.Publish(Snapshot{ConversationID: "conv-b", Messages: []Message{{ID: "x"}}})

	snap := <-sub.Updates()
	assert.Len(t, snap.Messages, 2)

	select {
	case extra := <-sub.Updates():
		t.Fatalf("unexpected snapshot %+v", extra)
	default:
	}
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub()
	a1 := hub.Subscribe("conv-a")
	a2 := hub.Subscribe("conv-a")
	assert.Equal(t, 2, hub.Active("conv-a"))

	a1.Close()
	a1.Close()
	assert.Equal(t, 1, hub.Active("conv-a"))

	_, open := <-a1.Updates()
	assert.False(t, open)

	// Publier après fermeture ne doit pas paniquer
	hub.Publish(Snapshot{ConversationID: "conv-a"})
	a2.Close()
	assert.Equal(t, 0, hub.Active("conv-a"))
}
