package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker(t *testing.T) {
	b := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Message, 2)
	done := make(chan error, 1)
	go func() {
		done <- b.Subscribe(ctx, "t", func(ctx context.Context, msg *Message) error {
			got <- msg
			return errors.New("ignored")
		})
	}()
	require.Eventually(t, func() bool { return b.Subscribers("t") == 1 }, time.Second, time.Millisecond)

	require.NoError(t, b.Publish(ctx, "t", "k1", []byte(`{"a":1}`)))
	require.NoError(t, b.Publish(ctx, "other", "k2", []byte(`{}`)))
	require.NoError(t, b.Publish(ctx, "t", "k3", []byte(`{"a":2}`)))

	first := <-got
	second := <-got
	assert.Equal(t, "k1", first.Key)
	assert.Equal(t, `{"a":1}`, string(first.Payload))
	assert.Equal(t, "k3", second.Key)
	assert.NotEqual(t, first.ID, second.ID)

	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, 0, b.Subscribers("t"))
}
