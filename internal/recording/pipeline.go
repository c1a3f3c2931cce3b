package recording

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/technosupport/ts-shopguard/internal/camera"
	"github.com/technosupport/ts-shopguard/internal/metrics"
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")

	// ErrNoMedia means the recorder finalized with zero buffered bytes; no
	// artifact is produced.
	ErrNoMedia = errors.New("no media captured")
)

// DefaultDuration is the fixed capture window for a triggered recording.
const DefaultDuration = 15 * time.Second

type PipelineConfig struct {
	Duration time.Duration
}

// Pipeline buffers media while a trigger is active, stops after the fixed
// window (or an explicit Stop), packages the result into an Artifact and
// hands it to the sink. One pipeline per camera session.
type Pipeline struct {
	cfg    PipelineConfig
	sink   Sink
	blobs  BlobStore
	onDone func(*Artifact, error)

	mu        sync.Mutex
	rec       camera.Recorder
	recording bool
	timer     *time.Timer
}

// NewPipeline wires the pipeline to its sinks. onDone fires exactly once per
// started capture, with either the persisted artifact or the failure.
func NewPipeline(sink Sink, blobs BlobStore, cfg PipelineConfig, onDone func(*Artifact, error)) *Pipeline {
	if cfg.Duration == 0 {
		cfg.Duration = DefaultDuration
	}
	return &Pipeline{
		cfg:    cfg,
		sink:   sink,
		blobs:  blobs,
		onDone: onDone,
	}
}

// Bind attaches the session recorder. A nil recorder disables recording for
// the session without affecting the alarm flow.
func (p *Pipeline) Bind(rec camera.Recorder) {
	p.mu.Lock()
	p.rec = rec
	p.mu.Unlock()
}

// Start clears any buffered media and begins capture. No-op failure when a
// capture is already running or no recorder is bound.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.recording {
		return ErrAlreadyRecording
	}
	if p.rec == nil {
		return camera.ErrRecorderUnavailable
	}
	if err := p.rec.Start(); err != nil {
		return fmt.Errorf("recorder start: %w", err)
	}

	p.recording = true
	p.timer = time.AfterFunc(p.cfg.Duration, p.finalize)
	return nil
}

// Stop finalizes early. Idempotent; a no-op when nothing is recording.
func (p *Pipeline) Stop() {
	p.finalize()
}

func (p *Pipeline) Recording() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recording
}

func (p *Pipeline) finalize() {
	p.mu.Lock()
	if !p.recording {
		p.mu.Unlock()
		return
	}
	p.recording = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	rec := p.rec
	p.mu.Unlock()

	data, err := rec.Stop()
	if err != nil {
		metrics.RecordingsFailed.Inc()
		p.done(nil, fmt.Errorf("recorder stop: %w", err))
		return
	}
	if len(data) == 0 {
		metrics.RecordingsFailed.Inc()
		p.done(nil, ErrNoMedia)
		return
	}

	a := Artifact{
		ID:             uuid.New(),
		Timestamp:      time.Now(),
		MimeType:       rec.MimeType(),
		SizeBytes:      len(data),
		DurationSec:    int(p.cfg.Duration / time.Second),
		DetectedMotion: true,
	}

	url, err := p.blobs.Save(a.ID, a.MimeType, data)
	if err != nil {
		metrics.RecordingsFailed.Inc()
		p.done(nil, fmt.Errorf("persist media: %w", err))
		return
	}
	a.MediaURL = url

	if err := p.sink.Add(context.Background(), a); err != nil {
		metrics.RecordingsFailed.Inc()
		p.done(nil, fmt.Errorf("persist artifact: %w", err))
		return
	}

	metrics.RecordingsSaved.Inc()
	p.done(&a, nil)
}

func (p *Pipeline) done(a *Artifact, err error) {
	if p.onDone != nil {
		p.onDone(a, err)
	}
}
