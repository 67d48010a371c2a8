package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "doc:"

// RedisStore keeps one JSON document per path under a "doc:" key and
// publishes every change on the path's channel, so subscribers can pattern
// match a path and all of its descendants.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, keyPrefix+path, raw, 0).Err(); err != nil {
		return err
	}
	s.publish(ctx, Event{Path: path, Value: raw})
	return nil
}

func (s *RedisStore) Get(ctx context.Context, path string, dest any) (bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if dest != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *RedisStore) Remove(ctx context.Context, path string) error {
	if err := s.client.Del(ctx, keyPrefix+path).Err(); err != nil {
		return err
	}
	s.publish(ctx, Event{Path: path, Deleted: true})
	return nil
}

// List returns the direct children of a container path, keyed by child name.
func (s *RedisStore) List(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	keys, err := s.client.Keys(ctx, keyPrefix+path+"/*").Result()
	if err != nil {
		return nil, err
	}

	children := map[string]json.RawMessage{}
	var direct []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, keyPrefix+path+"/")
		if strings.Contains(rest, "/") {
			continue
		}
		direct = append(direct, key)
	}
	if len(direct) == 0 {
		return children, nil
	}
	sort.Strings(direct)

	values, err := s.client.MGet(ctx, direct...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		name := strings.TrimPrefix(direct[i], keyPrefix+path+"/")
		children[name] = json.RawMessage(str)
	}
	return children, nil
}

// Subscribe delivers the current state under path (the value at the path
// itself, plus every existing descendant) and then streams later changes.
// The pubsub connection is opened before the snapshot read, so a write that
// races the snapshot is delivered twice rather than lost.
func (s *RedisStore) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	pubsub := s.client.PSubscribe(subCtx, keyPrefix+path, keyPrefix+path+"/*")
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		for _, ev := range s.snapshot(subCtx, path) {
			select {
			case out <- ev:
			case <-subCtx.Done():
				return
			}
		}

		for {
			select {
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("docstore: bad event payload on %s: %v", msg.Channel, err)
					continue
				}
				select {
				case out <- ev:
				case <-subCtx.Done():
					return
				}
			case <-subCtx.Done():
				return
			}
		}
	}()

	return &Subscription{C: out, cancel: cancel}, nil
}

func (s *RedisStore) snapshot(ctx context.Context, path string) []Event {
	var events []Event

	var value json.RawMessage
	if ok, err := s.Get(ctx, path, &value); err == nil && ok {
		events = append(events, Event{Path: path, Value: value})
	}

	keys, err := s.client.Keys(ctx, keyPrefix+path+"/*").Result()
	if err != nil {
		return events
	}
	sort.Strings(keys)
	for _, key := range keys {
		raw, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		events = append(events, Event{Path: strings.TrimPrefix(key, keyPrefix), Value: raw})
	}
	return events
}

func (s *RedisStore) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.client.Publish(ctx, keyPrefix+ev.Path, payload).Err(); err != nil {
		log.Printf("docstore: publish error on %s: %v", ev.Path, err)
	}
}
