package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"mintgate/internal/registry/models"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"
)

// Key layout under the configured prefix:
//
//	<prefix>:minters:approved        HASH minter -> approved-at (unix nanos)
//	<prefix>:assignments             HASH project -> "minter|assigned-at"
//	<prefix>:minter:<m>:projects     SET of project ids assigned to m
const (
	approvedSuffix    = ":minters:approved"
	assignmentsSuffix = ":assignments"
	reverseInfix      = ":minter:"
	reverseSuffix     = ":projects"
	fieldSeparator    = "|"
)

// removeScript deletes an approved minter unless it is still assigned.
// Returns -1 when not approved, -2 when still assigned, 1 on success.
var removeScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return -1
end
if redis.call('SCARD', KEYS[2]) > 0 then
	return -2
end
redis.call('HDEL', KEYS[1], ARGV[1])
return 1
`)

// assignScript overwrites a project's assignment when the new minter is approved
// and keeps the reverse index in step. Returns -1 when the minter is not approved,
// otherwise the previously assigned minter ("" when none).
var assignScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
	return -1
end
local prev = redis.call('HGET', KEYS[2], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
redis.call('SADD', KEYS[3], ARGV[2])
if prev then
	local old = string.match(prev, '^([^|]+)')
	if old ~= ARGV[1] then
		redis.call('SREM', ARGV[4] .. old .. ARGV[5], ARGV[2])
	end
	return old
end
return ''
`)

// RedisStore keeps the registry in Redis so every process behind the load
// balancer sees one approved set and one assignment per project.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key. Defaults to "mintgate".
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "mintgate"}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) approvedKey() string {
	return s.prefix + approvedSuffix
}

func (s *RedisStore) assignmentsKey() string {
	return s.prefix + assignmentsSuffix
}

func (s *RedisStore) reverseKey(m domain.MinterID) string {
	return s.prefix + reverseInfix + m.String() + reverseSuffix
}

func (s *RedisStore) AddApproved(ctx context.Context, m domain.MinterID, at time.Time) error {
	added, err := s.client.HSetNX(ctx, s.approvedKey(), m.String(), at.UnixNano()).Result()
	if err != nil {
		return fmt.Errorf("add approved minter: %w", err)
	}
	if !added {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) RemoveApproved(ctx context.Context, m domain.MinterID) error {
	res, err := removeScript.Run(ctx, s.client,
		[]string{s.approvedKey(), s.reverseKey(m)}, m.String()).Int64()
	if err != nil {
		return fmt.Errorf("remove approved minter: %w", err)
	}
	switch res {
	case -1:
		return sentinel.ErrNotFound
	case -2:
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *RedisStore) IsApproved(ctx context.Context, m domain.MinterID) (bool, error) {
	ok, err := s.client.HExists(ctx, s.approvedKey(), m.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check approved minter: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) ListApproved(ctx context.Context) ([]models.ApprovedMinter, error) {
	all, err := s.client.HGetAll(ctx, s.approvedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list approved minters: %w", err)
	}
	out := make([]models.ApprovedMinter, 0, len(all))
	for m, raw := range all {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode approved-at for %s: %w", m, err)
		}
		out = append(out, models.ApprovedMinter{Minter: domain.MinterID(m), ApprovedAt: time.Unix(0, nanos).UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minter < out[j].Minter })
	return out, nil
}

func (s *RedisStore) SetAssignment(ctx context.Context, a models.Assignment) (domain.MinterID, error) {
	res, err := assignScript.Run(ctx, s.client,
		[]string{s.approvedKey(), s.assignmentsKey(), s.reverseKey(a.Minter)},
		a.Minter.String(),
		a.ProjectID.String(),
		encodeAssignment(a),
		s.prefix+reverseInfix,
		reverseSuffix,
	).Result()
	if err != nil {
		return "", fmt.Errorf("set assignment: %w", err)
	}
	switch v := res.(type) {
	case int64:
		if v == -1 {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("set assignment: unexpected script result %d", v)
	case string:
		return domain.MinterID(v), nil
	default:
		return "", fmt.Errorf("set assignment: unexpected script result %T", res)
	}
}

func (s *RedisStore) GetAssignment(ctx context.Context, id domain.ProjectID) (*models.Assignment, error) {
	raw, err := s.client.HGet(ctx, s.assignmentsKey(), id.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	a, err := decodeAssignment(id, raw)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *RedisStore) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	all, err := s.client.HGetAll(ctx, s.assignmentsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make([]models.Assignment, 0, len(all))
	for field, raw := range all {
		id, err := domain.ParseProjectID(field)
		if err != nil {
			return nil, fmt.Errorf("decode assignment key %q: %w", field, err)
		}
		a, err := decodeAssignment(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func encodeAssignment(a models.Assignment) string {
	return a.Minter.String() + fieldSeparator + strconv.FormatInt(a.AssignedAt.UnixNano(), 10)
}

func decodeAssignment(id domain.ProjectID, raw string) (models.Assignment, error) {
	minter, at, ok := strings.Cut(raw, fieldSeparator)
	if !ok {
		return models.Assignment{}, fmt.Errorf("decode assignment for project %s: malformed value", id)
	}
	nanos, err := strconv.ParseInt(at, 10, 64)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("decode assignment for project %s: %w", id, err)
	}
	return models.Assignment{
		ProjectID:  id,
		Minter:     domain.MinterID(minter),
		AssignedAt: time.Unix(0, nanos).UTC(),
	}, nil
}
