package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewGoChannel()
	defer n.Close()

	first, err := n.Subscribe(ctx, TopicSettingsUpdated)
	require.NoError(t, err)
	second, err := n.Subscribe(ctx, TopicSettingsUpdated)
	require.NoError(t, err)

	require.NoError(t, n.Publish(TopicSettingsUpdated, []byte(`{"force_deal_paytype":true}`)))

	for _, ch := range []<-chan []byte{first, second} {
		select {
		case payload := <-ch:
			assert.JSONEq(t, `{"force_deal_paytype":true}`, string(payload))
		case <-time.After(2 * time.Second):
			t.Fatal("signal not delivered")
		}
	}
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	n := NewGoChannel()
	defer n.Close()

	ch, err := n.Subscribe(ctx, TopicSettingsUpdated)
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-ch:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close")
	}
}
