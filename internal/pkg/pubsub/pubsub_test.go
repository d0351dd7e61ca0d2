package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "predict:changes:applications", Channel(CollectionApplications))
	assert.Equal(t, "predict:changes:discount_codes", Channel(CollectionDiscountCodes))
}

func TestIsCollection(t *testing.T) {
	for _, c := range Collections {
		assert.True(t, IsCollection(c), c)
	}
	assert.False(t, IsCollection("analyses"))
	assert.False(t, IsCollection(""))
}

func TestChangeEvent_JSON(t *testing.T) {
	data, err := json.Marshal(&ChangeEvent{Collection: CollectionPlans, Op: OpUpdate, ID: "01abc"})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "plans", raw["collection"])
	assert.Equal(t, "update", raw["op"])
	assert.Equal(t, "01abc", raw["id"])
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.PublishChange(context.Background(), CollectionMedia, OpCreate, "x"))
}

func TestPublisherSubscriber(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *ChangeEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- subscriber.Subscribe(ctx, []string{CollectionApplications}, func(e *ChangeEvent) {
			received <- e
		})
	}()

	// 订阅建立前的发布会丢失，轮询直到收到
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case e := <-received:
			assert.Equal(t, CollectionApplications, e.Collection)
			assert.Equal(t, OpUpdate, e.Op)
			assert.Equal(t, "app-1", e.ID)
			assert.False(t, e.At.IsZero())

			cancel()
			select {
			case err := <-done:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("subscriber did not stop")
			}
			return
		case <-ticker.C:
			// 其他集合的事件不应被投递
			require.NoError(t, publisher.PublishChange(ctx, CollectionPlans, OpCreate, "plan-1"))
			require.NoError(t, publisher.PublishChange(ctx, CollectionApplications, OpUpdate, "app-1"))
		case <-ctx.Done():
			t.Fatal("timeout waiting for change event")
		}
	}
}
