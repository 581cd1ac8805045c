package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
)

// Script results shared by the Lua scripts below.
const (
	scriptOK           = 1
	scriptNotFound     = -1
	scriptConflict     = -2
	scriptActivityFull = -3
)

// KEYS[1] activity hash, KEYS[2] participant list; ARGV[1] email.
var enrollScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
local members = redis.call('LRANGE', KEYS[2], 0, -1)
for _, m in ipairs(members) do
  if m == ARGV[1] then
    return -2
  end
end
local max = tonumber(redis.call('HGET', KEYS[1], 'max_participants'))
if #members >= max then
  return -3
end
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

var withdrawScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
if redis.call('LREM', KEYS[2], 1, ARGV[1]) == 0 then
  return -2
end
return 1
`)

// KEYS[1] activity hash, KEYS[2] participant list, KEYS[3] name index;
// ARGV: name, description, schedule, max_participants, participants...
var seedScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'description', ARGV[2], 'schedule', ARGV[3], 'max_participants', ARGV[4])
redis.call('DEL', KEYS[2])
for i = 5, #ARGV do
  redis.call('RPUSH', KEYS[2], ARGV[i])
end
redis.call('SADD', KEYS[3], ARGV[1])
return 1
`)

// RedisRepository keeps each activity in a hash plus a participant list.
// Mutations run as Lua scripts, so each check-then-mutate is atomic on the
// server.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisRepository constructs a RedisRepository using keys under prefix.
func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "activities"
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) indexKey() string {
	return r.prefix + ":index"
}

func (r *RedisRepository) activityKey(name string) string {
	return r.prefix + ":activity:" + name
}

func (r *RedisRepository) participantsKey(name string) string {
	return r.prefix + ":participants:" + name
}

// Seed inserts activities that are not present yet.
func (r *RedisRepository) Seed(ctx context.Context, activities []model.Activity) error {
	for _, a := range activities {
		args := make([]interface{}, 0, 4+len(a.Participants))
		args = append(args, a.Name, a.Description, a.Schedule, a.MaxParticipants)
		for _, p := range a.Participants {
			args = append(args, p)
		}
		keys := []string{r.activityKey(a.Name), r.participantsKey(a.Name), r.indexKey()}
		if err := seedScript.Run(ctx, r.rdb, keys, args...).Err(); err != nil {
			return fmt.Errorf("seed activity %q: %w", a.Name, err)
		}
	}
	return nil
}

// List reads every indexed activity in one pipeline.
func (r *RedisRepository) List(ctx context.Context) ([]model.Activity, error) {
	names, err := r.rdb.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list activity names: %w", err)
	}

	hashes := make([]*redis.MapStringStringCmd, len(names))
	lists := make([]*redis.StringSliceCmd, len(names))
	_, err = r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, name := range names {
			hashes[i] = p.HGetAll(ctx, r.activityKey(name))
			lists[i] = p.LRange(ctx, r.participantsKey(name), 0, -1)
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	activities := make([]model.Activity, 0, len(names))
	for i, name := range names {
		fields := hashes[i].Val()
		if len(fields) == 0 {
			continue
		}
		maxParticipants, err := strconv.Atoi(fields["max_participants"])
		if err != nil {
			return nil, fmt.Errorf("activity %q: bad max_participants: %w", name, err)
		}
		participants := lists[i].Val()
		if participants == nil {
			participants = []string{}
		}
		activities = append(activities, model.Activity{
			Name:            name,
			Description:     fields["description"],
			Schedule:        fields["schedule"],
			MaxParticipants: maxParticipants,
			Participants:    participants,
		})
	}
	sortByName(activities)
	return activities, nil
}

// Enroll runs the duplicate and capacity checks and the append atomically.
func (r *RedisRepository) Enroll(ctx context.Context, activity, email string) error {
	keys := []string{r.activityKey(activity), r.participantsKey(activity)}
	res, err := enrollScript.Run(ctx, r.rdb, keys, email).Int()
	if err != nil {
		return fmt.Errorf("enroll script: %w", err)
	}
	return scriptError(res, ErrAlreadyRegistered)
}

// Withdraw removes one matching entry atomically.
func (r *RedisRepository) Withdraw(ctx context.Context, activity, email string) error {
	keys := []string{r.activityKey(activity), r.participantsKey(activity)}
	res, err := withdrawScript.Run(ctx, r.rdb, keys, email).Int()
	if err != nil {
		return fmt.Errorf("withdraw script: %w", err)
	}
	return scriptError(res, ErrNotRegistered)
}

func scriptError(res int, conflict error) error {
	switch res {
	case scriptOK:
		return nil
	case scriptNotFound:
		return ErrNotFound
	case scriptConflict:
		return conflict
	case scriptActivityFull:
		return ErrActivityFull
	default:
		return fmt.Errorf("unexpected script result %d", res)
	}
}
