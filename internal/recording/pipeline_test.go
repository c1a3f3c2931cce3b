package recording

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technosupport/ts-shopguard/internal/camera"
)

type doneCapture struct {
	mu       sync.Mutex
	artifact *Artifact
	err      error
	calls    int
}

func (d *doneCapture) fn(a *Artifact, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.artifact = a
	d.err = err
	d.calls++
}

func (d *doneCapture) snapshot() (*Artifact, error, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.artifact, d.err, d.calls
}

func newTestPipeline(t *testing.T, rec camera.Recorder, window time.Duration) (*Pipeline, *MemorySink, *doneCapture) {
	sink := NewMemorySink()
	done := &doneCapture{}
	p := NewPipeline(sink, NewMemBlobStore(), PipelineConfig{Duration: window}, done.fn)
	p.Bind(rec)
	return p, sink, done
}

func TestPipeline_FinalizesAfterWindow(t *testing.T) {
	rec := &camera.MockRecorder{}
	rec.On("Start").Return(nil)
	rec.On("Stop").Return([]byte("webm-bytes"), nil)
	rec.On("MimeType").Return("video/webm")

	p, sink, done := newTestPipeline(t, rec, 20*time.Millisecond)

	require.NoError(t, p.Start())
	assert.True(t, p.Recording())

	require.Eventually(t, func() bool {
		_, _, calls := done.snapshot()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	a, err, _ := done.snapshot()
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.True(t, a.DetectedMotion)
	assert.Equal(t, 10, a.SizeBytes)
	assert.NotEmpty(t, a.MediaURL)
	assert.False(t, p.Recording())

	got, err := sink.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestPipeline_ExplicitStopFinalizesEarly(t *testing.T) {
	rec := &camera.MockRecorder{}
	rec.On("Start").Return(nil)
	rec.On("Stop").Return([]byte("x"), nil)
	rec.On("MimeType").Return("video/webm")

	p, sink, done := newTestPipeline(t, rec, time.Hour)

	require.NoError(t, p.Start())
	p.Stop()

	_, err, calls := done.snapshot()
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	got, _ := sink.List(context.Background())
	assert.Len(t, got, 1)
}

func TestPipeline_StartWhileRecordingFails(t *testing.T) {
	rec := &camera.MockRecorder{}
	rec.On("Start").Return(nil)
	rec.On("Stop").Return([]byte("x"), nil)
	rec.On("MimeType").Return("video/webm")

	p, _, _ := newTestPipeline(t, rec, time.Hour)
	defer p.Stop()

	require.NoError(t, p.Start())
	assert.ErrorIs(t, p.Start(), ErrAlreadyRecording)
}

func TestPipeline_NoRecorderBound(t *testing.T) {
	p, _, _ := newTestPipeline(t, nil, time.Hour)
	p.Bind(nil)

	assert.ErrorIs(t, p.Start(), camera.ErrRecorderUnavailable)
}

func TestPipeline_ZeroBytesReportsFailure(t *testing.T) {
	rec := &camera.MockRecorder{}
	rec.On("Start").Return(nil)
	rec.On("Stop").Return([]byte{}, nil)

	p, sink, done := newTestPipeline(t, rec, time.Hour)

	require.NoError(t, p.Start())
	p.Stop()

	a, err, _ := done.snapshot()
	assert.Nil(t, a)
	assert.ErrorIs(t, err, ErrNoMedia)

	got, _ := sink.List(context.Background())
	assert.Empty(t, got)
}

func TestPipeline_StopIdempotent(t *testing.T) {
	rec := &camera.MockRecorder{}
	rec.On("Start").Return(nil)
	rec.On("Stop").Return([]byte("x"), nil).Once()
	rec.On("MimeType").Return("video/webm")

	p, _, done := newTestPipeline(t, rec, time.Hour)

	require.NoError(t, p.Start())
	p.Stop()
	p.Stop()

	_, _, calls := done.snapshot()
	assert.Equal(t, 1, calls)
}
