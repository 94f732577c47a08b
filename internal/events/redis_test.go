package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisherDeliversToSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	pub := NewRedisPublisher(rdb)
	ctx := context.Background()

	sub := pub.Subscribe(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	u := &model.User{ID: uuid.New(), Name: "Ayşe", Surname: "Yılmaz", Email: "ayse@example.com", Status: model.StatusApproved}
	require.NoError(t, pub.Publish(ctx, ForUser(TypeUserApproved, u, nil)))

	select {
	case msg := <-sub.Channel():
		var evt Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, TypeUserApproved, evt.Type)
		assert.Equal(t, u.ID, evt.UserID)
		assert.Equal(t, "Ayşe Yılmaz", evt.Name)
		assert.Equal(t, model.StatusApproved, evt.Status)
		assert.Equal(t, "none", evt.Role)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

type failingPublisher struct{ err error }

func (f failingPublisher) Publish(context.Context, Event) error { return f.err }

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{Nop{}, failingPublisher{err: boom}}

	err := m.Publish(context.Background(), Event{Type: TypeRoleChanged})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, Multi{Nop{}}.Publish(context.Background(), Event{}))
}
