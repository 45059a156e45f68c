package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})
	d.Subscribe(EventLogout, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventLoginSucceeded, Actor{Username: "alice"})))
	require.NoError(t, d.Publish(context.Background(), NewEvent(EventLoginFailed, Actor{Username: "alice"})))
	require.NoError(t, d.Publish(context.Background(), NewEvent(EventLogout, Actor{Username: "alice"})))

	assert.Equal(t, []EventType{EventLoginSucceeded, EventLogout}, got)
}

func TestDispatcherJoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventLoginFailed, Actor{Username: "bob"}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDispatcherConcurrentPublish(t *testing.T) {
	d := NewInMemoryDispatcher()
	var mu sync.Mutex
	count := 0
	d.Subscribe(EventLoginSucceeded, func(context.Context, Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Publish(context.Background(), NewEvent(EventLoginSucceeded, Actor{Username: "alice"}))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, count)
}

func TestNewEventStampsIDAndTime(t *testing.T) {
	a := NewEvent(EventUserRegistered, Actor{Username: "carol"})
	b := NewEvent(EventUserRegistered, Actor{Username: "carol"})
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
