package recording

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MaxArtifacts bounds the retained recording count. The oldest artifact is
// evicted when a new one pushes the store past the cap.
const MaxArtifacts = 5

// Sink is the bounded recording store: Add prepends and truncates to the
// MaxArtifacts newest.
type Sink interface {
	Add(ctx context.Context, a Artifact) error
	List(ctx context.Context) ([]Artifact, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// MemorySink keeps artifacts in process memory, newest first.
type MemorySink struct {
	mu        sync.Mutex
	artifacts []Artifact
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Add(_ context.Context, a Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts = append([]Artifact{a}, s.artifacts...)
	if len(s.artifacts) > MaxArtifacts {
		s.artifacts = s.artifacts[:MaxArtifacts]
	}
	return nil
}

func (s *MemorySink) List(_ context.Context) ([]Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out, nil
}

func (s *MemorySink) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.artifacts {
		if a.ID == id {
			s.artifacts = append(s.artifacts[:i], s.artifacts[i+1:]...)
			return nil
		}
	}
	return nil
}

// RedisSink persists the artifact list in Redis so recordings survive a
// service restart. LPUSH+LTRIM gives the prepend-and-cap semantics directly.
type RedisSink struct {
	Client *redis.Client
	Key    string
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{Client: client, Key: "shopguard:recordings"}
}

func (s *RedisSink) Add(ctx context.Context, a Artifact) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	pipe := s.Client.Pipeline()
	pipe.LPush(ctx, s.Key, data)
	pipe.LTrim(ctx, s.Key, 0, MaxArtifacts-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSink) List(ctx context.Context) ([]Artifact, error) {
	raw, err := s.Client.LRange(ctx, s.Key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]Artifact, 0, len(raw))
	for _, r := range raw {
		var a Artifact
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue // skip corrupt entries rather than failing the listing
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *RedisSink) Remove(ctx context.Context, id uuid.UUID) error {
	raw, err := s.Client.LRange(ctx, s.Key, 0, -1).Result()
	if err != nil {
		return err
	}

	for _, r := range raw {
		var a Artifact
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue
		}
		if a.ID == id {
			return s.Client.LRem(ctx, s.Key, 1, r).Err()
		}
	}
	return nil
}
