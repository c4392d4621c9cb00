package trending

import (
	"context"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/breatheeasy/internal/domain/action"
)

// ValkeyStore keeps location popularity in a Valkey sorted set.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "aqi"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// Bump implements action.Trending.
func (s *ValkeyStore) Bump(ctx context.Context, location string) error {
	canonical := Canonical(location)
	if canonical == "" {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Zincrby().Key(s.rankKey()).Increment(1).Member(canonical).Build()).Error(); err != nil {
		return err
	}
	_ = s.client.Do(ctx, s.client.B().Set().Key(s.displayKey(canonical)).Value(location).Nx().Build()).Error()
	return nil
}

// Top implements action.Trending.
func (s *ValkeyStore) Top(ctx context.Context, limit int) ([]action.TrendingLocation, error) {
	if limit <= 0 {
		limit = 10
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.rankKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]action.TrendingLocation, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			member string
			score  float64
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if member, err = tuple[0].ToString(); err != nil {
				return nil, err
			}
			if score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if member, err = arr[i].ToString(); err != nil {
				return nil, err
			}
			if score, err = arr[i+1].ToFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		out = append(out, action.TrendingLocation{Location: s.fetchDisplay(ctx, member), Searches: int64(score)})
	}
	return out, nil
}

func (s *ValkeyStore) fetchDisplay(ctx context.Context, canonical string) string {
	display, err := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(canonical)).Build()).ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) rankKey() string {
	return fmt.Sprintf("%s:locations:rank", s.prefix)
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return fmt.Sprintf("%s:locations:display:%s", s.prefix, canonical)
}

var _ action.Trending = (*ValkeyStore)(nil)
