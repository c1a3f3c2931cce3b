package recording

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artifact(n int) Artifact {
	return Artifact{
		ID:             uuid.New(),
		Timestamp:      time.Now(),
		MediaURL:       fmt.Sprintf("mem://clip-%d", n),
		MimeType:       "video/webm",
		SizeBytes:      1024,
		DurationSec:    15,
		DetectedMotion: true,
	}
}

func setupRedisSink(t *testing.T) *RedisSink {
	mini := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	return NewRedisSink(rdb)
}

func TestSink_CapAndFIFOEviction(t *testing.T) {
	sinks := map[string]Sink{
		"memory": NewMemorySink(),
		"redis":  setupRedisSink(t),
	}

	for name, s := range sinks {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var ids []uuid.UUID
			for i := 0; i < 6; i++ {
				a := artifact(i)
				ids = append(ids, a.ID)
				require.NoError(t, s.Add(ctx, a))
			}

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, MaxArtifacts)

			// Newest first; the oldest (index 0) was evicted.
			assert.Equal(t, ids[5], got[0].ID)
			assert.Equal(t, ids[1], got[4].ID)
			for _, a := range got {
				assert.NotEqual(t, ids[0], a.ID)
			}
		})
	}
}

func TestSink_Remove(t *testing.T) {
	sinks := map[string]Sink{
		"memory": NewMemorySink(),
		"redis":  setupRedisSink(t),
	}

	for name, s := range sinks {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			keep := artifact(1)
			drop := artifact(2)
			require.NoError(t, s.Add(ctx, keep))
			require.NoError(t, s.Add(ctx, drop))

			require.NoError(t, s.Remove(ctx, drop.ID))

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, keep.ID, got[0].ID)

			// Removing an unknown id is not an error.
			assert.NoError(t, s.Remove(ctx, uuid.New()))
		})
	}
}
