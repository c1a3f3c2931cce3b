package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound   = errors.New("owner not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Profile is the shop owner account plus the per-shop settings the
// surveillance core reads (opening hours, preferred sensitivity).
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	MobileNumber     string    `json:"mobile_number"`
	AlternateNumbers []string  `json:"alternate_numbers,omitempty"`
	ShopName         string    `json:"shop_name"`
	ShopAddress      string    `json:"shop_address"`
	OpeningTime      string    `json:"opening_time"` // "HH:MM"
	ClosingTime      string    `json:"closing_time"`
	Sensitivity      int       `json:"sensitivity"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store persists owner profiles keyed by email.
type Store interface {
	Save(ctx context.Context, p Profile) error
	GetByEmail(ctx context.Context, email string) (*Profile, error)
}

// RedisStore keeps one JSON document per owner.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func ownerKey(email string) string {
	return "shopguard:owner:" + email
}

func (s *RedisStore) Save(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.Client.Set(ctx, ownerKey(p.Email), data, 0).Err()
}

func (s *RedisStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	raw, err := s.Client.Get(ctx, ownerKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

// MemoryStore backs deployments without Redis and tests.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Save(_ context.Context, p Profile) error {
	s.mu.Lock()
	s.profiles[p.Email] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}
