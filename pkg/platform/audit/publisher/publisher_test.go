package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
	audit "mintgate/pkg/platform/audit"
	"mintgate/pkg/platform/audit/store/memory"
	"mintgate/pkg/platform/circuit"
	"mintgate/pkg/requestcontext"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	projectID := domain.ProjectID(1)
	err := pub.Emit(context.Background(), audit.Event{
		ProjectID: projectID,
		Action:    string(audit.EventPriceUpdated),
		Value:     "1100000000000000000",
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventPriceUpdated), events[0].Action)
	assert.Equal(t, audit.CategoryPolicy, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	projectID := domain.ProjectID(2)
	err := pub.Emit(context.Background(), audit.Event{
		ProjectID: projectID,
		Action:    string(audit.EventMinterAssigned),
	})
	require.NoError(t, err)

	pub.Close()

	events, err := pub.List(context.Background(), projectID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryRegistry, events[0].Category)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	projectID := domain.ProjectID(3)
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			ProjectID: projectID,
			Action:    string(audit.EventPurchaseAdmitted),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventProjectAdded)})
	require.Error(t, err)
}

func TestPublisher_BufferFull(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventPurchaseAdmitted)})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_StampsFromRequestContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	require.NoError(t, pub.Emit(ctx, audit.Event{ProjectID: 7, Action: string(audit.EventProjectAdded)}))

	events, err := pub.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, audit.CategoryLedger, events[0].Category)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		ProjectID: 1,
		Action:    string(audit.EventProjectAdded),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_FansOutToSinks(t *testing.T) {
	store := memory.NewInMemoryStore()
	first := &recordingSink{}
	second := &recordingSink{err: errors.New("broker down")}
	pub := NewPublisher(store, WithSink(first), WithSink(second), WithSink(nil))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{ProjectID: 1, Action: string(audit.EventMinterApproved)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())

	events, err := store.ListByProject(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, events, 1, "store append happens before sink fan-out")
}

func TestPublisher_SeparatesProjects(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{ProjectID: 1, Action: string(audit.EventPriceUpdated)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{ProjectID: 2, Action: string(audit.EventPurchaseToDisabledUpdated)}))

	events1, err := pub.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events1, 1)
	assert.Equal(t, string(audit.EventPriceUpdated), events1[0].Action)

	events2, err := pub.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events2, 1)
	assert.Equal(t, string(audit.EventPurchaseToDisabledUpdated), events2[0].Action)

	recent, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.ProjectID(2), recent[0].ProjectID)
}

func TestPublisher_SinkBreakerStopsCallingFailingSink(t *testing.T) {
	store := memory.NewInMemoryStore()
	failing := &recordingSink{err: errors.New("broker down")}
	healthy := &recordingSink{}
	pub := NewPublisher(store,
		WithSink(failing),
		WithSink(healthy),
		WithSinkBreaker(circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour)),
	)
	defer pub.Close()

	for range 4 {
		err := pub.Emit(context.Background(), audit.Event{ProjectID: 1, Action: string(audit.EventPurchaseAdmitted)})
		require.Error(t, err)
	}

	assert.Equal(t, 2, failing.count(), "breaker opens after two failures")
	assert.Equal(t, 4, healthy.count())

	err := pub.Emit(context.Background(), audit.Event{ProjectID: 1, Action: string(audit.EventPurchaseAdmitted)})
	require.ErrorIs(t, err, ErrSinkUnavailable)

	events, err := store.ListByProject(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
