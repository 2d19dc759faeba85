package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"mintgate/internal/ratelimit/models"
)

type bucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
	Reset(ctx context.Context, key string) error
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// BucketStoreSuite runs the same contract against each backend.
type BucketStoreSuite struct {
	suite.Suite
	newStore func(t *testing.T, clock *fakeClock) bucketStore
	store    bucketStore
	clock    *fakeClock
	ctx      context.Context
}

func TestInMemoryBucketStore(t *testing.T) {
	suite.Run(t, &BucketStoreSuite{newStore: func(_ *testing.T, clock *fakeClock) bucketStore {
		return NewInMemoryBucketStore(WithClock(clock.Now))
	}})
}

func TestRedisBucketStore(t *testing.T) {
	suite.Run(t, &BucketStoreSuite{newStore: func(t *testing.T, clock *fakeClock) bucketStore {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisBucketStore(client, WithRedisClock(clock.Now))
	}})
}

func (s *BucketStoreSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.store = s.newStore(s.T(), s.clock)
	s.ctx = context.Background()
}

func (s *BucketStoreSuite) TestAllowUpToLimit() {
	for i := range 3 {
		res, err := s.store.Allow(s.ctx, "k", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
		s.Equal(3, res.Limit)
	}

	res, err := s.store.Allow(s.ctx, "k", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(0, res.Remaining)
	s.Equal(s.clock.Now().Add(time.Minute), res.ResetAt.UTC())
}

func (s *BucketStoreSuite) TestWindowSlides() {
	_, err := s.store.Allow(s.ctx, "k", 2, time.Minute)
	s.Require().NoError(err)
	s.clock.Advance(30 * time.Second)
	_, err = s.store.Allow(s.ctx, "k", 2, time.Minute)
	s.Require().NoError(err)

	res, err := s.store.Allow(s.ctx, "k", 2, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)

	s.clock.Advance(31 * time.Second)
	res, err = s.store.Allow(s.ctx, "k", 2, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
	s.Equal(0, res.Remaining)
}

func (s *BucketStoreSuite) TestKeysAreIndependent() {
	_, err := s.store.Allow(s.ctx, "a", 1, time.Minute)
	s.Require().NoError(err)

	res, err := s.store.Allow(s.ctx, "b", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *BucketStoreSuite) TestReset() {
	_, err := s.store.Allow(s.ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(s.ctx, "k"))

	res, err := s.store.Allow(s.ctx, "k", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

func (s *BucketStoreSuite) TestConcurrentRequestsNeverExceedLimit() {
	const limit = 5
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.store.Allow(s.ctx, "k", limit, time.Minute)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(limit, allowed)
}
