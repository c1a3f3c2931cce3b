package surveillance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/technosupport/ts-shopguard/internal/alarm"
	"github.com/technosupport/ts-shopguard/internal/camera"
	"github.com/technosupport/ts-shopguard/internal/events"
	"github.com/technosupport/ts-shopguard/internal/metrics"
	"github.com/technosupport/ts-shopguard/internal/motion"
	"github.com/technosupport/ts-shopguard/internal/notify"
	"github.com/technosupport/ts-shopguard/internal/recording"
	"github.com/technosupport/ts-shopguard/internal/schedule"
)

var (
	ErrNotActive      = errors.New("surveillance is not active")
	ErrNoPendingAlarm = errors.New("no alarm awaiting a response")
)

// Config tunes the controller timings. Zero values fall back to defaults.
type Config struct {
	Cooldown         time.Duration // minimum gap between accepted triggers
	SweepInterval    time.Duration // deactivation-expiry check cadence
	RecordingWindow  time.Duration // fixed capture length per trigger
	PercentThreshold float64       // changed-pixel percentage for a verdict
	Sensitivity      int           // initial sensitivity, clamped to [5,50]
	Sampler          camera.SamplerConfig
}

// Deps are the collaborators the controller drives. Oracle, Alarm and
// Notifier get working defaults when nil; the rest are required.
type Deps struct {
	// OpenSource acquires the camera feed. May block on a permission prompt
	// and returns camera.ErrPermissionDenied on refusal.
	OpenSource func(ctx context.Context) (camera.VideoSource, error)
	// NewRecorder may fail with camera.ErrRecorderUnavailable, which leaves
	// the session in alarm-only mode.
	NewRecorder camera.RecorderFactory

	Oracle     *schedule.Oracle
	Events     events.Sink
	Recordings recording.Sink
	Blobs      recording.BlobStore
	Alarm      *alarm.Timer
	Notifier   *notify.Notifier

	// OnState, when set, is invoked on every state transition (dashboard
	// push). Called with the controller lock held; keep it non-blocking.
	OnState func(State)
}

// Controller is the sole owner of the surveillance state machine. Every
// transition happens under its mutex; the sampler, the HTTP handlers and the
// recording pipeline all funnel through it.
type Controller struct {
	cfg  Config
	deps Deps
	now  func() time.Time // swappable for tests

	mu          sync.Mutex
	state       State
	session     *camera.Session
	sampler     *camera.Sampler
	pipeline    *recording.Pipeline
	sensitivity int
	opening     string
	closing     string
	lastTrigger time.Time
	deact       *DeactivationWindow

	sweepStop chan struct{}
	sweepWG   sync.WaitGroup
}

func NewController(cfg Config, deps Deps) *Controller {
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 3 * time.Second
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 10 * time.Second
	}
	if cfg.PercentThreshold == 0 {
		cfg.PercentThreshold = motion.DefaultPercentThreshold
	}
	if cfg.Sensitivity == 0 {
		cfg.Sensitivity = motion.DefaultSensitivity
	}
	if deps.Oracle == nil {
		deps.Oracle = schedule.NewOracle()
	}
	if deps.Alarm == nil {
		deps.Alarm = alarm.NewTimer(alarm.LogSounder{})
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.NewNotifier(0)
	}
	return &Controller{
		cfg:         cfg,
		deps:        deps,
		now:         time.Now,
		state:       StateInactive,
		sensitivity: motion.ClampSensitivity(cfg.Sensitivity),
		opening:     "09:00",
		closing:     "18:00",
	}
}

// Start requests camera access and begins sampling. A refusal lands in
// Denied; calling Start again from Denied retries the request. Starting an
// already-running controller is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateInactive, StateDenied:
	default:
		c.mu.Unlock()
		return nil
	}
	c.setState(StateRequesting)
	c.mu.Unlock()

	src, err := c.deps.OpenSource(ctx)
	if err != nil {
		c.mu.Lock()
		c.setState(StateDenied)
		c.mu.Unlock()

		if errors.Is(err, camera.ErrPermissionDenied) {
			c.deps.Notifier.Post(notify.LevelError, "Camera access denied. Surveillance needs camera permission.")
		} else {
			c.deps.Notifier.Post(notify.LevelError, "Could not open camera: %v", err)
		}
		return err
	}

	var rec camera.Recorder
	if c.deps.NewRecorder != nil {
		rec, err = c.deps.NewRecorder(src)
		if err != nil {
			log.Printf("[WARN] Surveillance: recorder unavailable, alarm-only mode: %v", err)
			c.deps.Notifier.Post(notify.LevelWarning, "Recording unavailable; running alarm-only.")
			rec = nil
		}
	}

	c.mu.Lock()
	if c.state != StateRequesting {
		// Stopped while the permission prompt was up.
		c.mu.Unlock()
		_ = src.Close()
		return nil
	}
	c.session = &camera.Session{Source: src, Recorder: rec}
	c.pipeline = recording.NewPipeline(c.deps.Recordings, c.deps.Blobs,
		recording.PipelineConfig{Duration: c.cfg.RecordingWindow}, c.onRecordingDone)
	c.pipeline.Bind(rec)
	c.sampler = camera.NewSampler(src, c.cfg.Sampler, c.HandleFrame)
	c.sampler.Start()
	c.sweepStop = make(chan struct{})
	c.sweepWG.Add(1)
	go c.sweepLoop(c.sweepStop)
	c.setState(StateActive)
	c.mu.Unlock()

	c.deps.Notifier.Post(notify.LevelSuccess, "Surveillance activated.")
	return nil
}

// Stop tears the session down from any state: sampler, in-flight recording
// (finalized and persisted), alarm, deactivation window and the frame
// baseline. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateInactive {
		c.mu.Unlock()
		return
	}
	sampler := c.sampler
	session := c.session
	pipeline := c.pipeline
	sweepStop := c.sweepStop
	c.sampler, c.session, c.pipeline, c.sweepStop = nil, nil, nil, nil
	if c.deact != nil {
		c.deact = nil
		metrics.DeactivationActive.Set(0)
	}
	c.setState(StateInactive)
	c.mu.Unlock()

	// Teardown happens outside the lock: the sampler goroutine may be
	// blocked in HandleFrame waiting on the mutex, and pipeline finalization
	// re-enters through onRecordingDone.
	if sweepStop != nil {
		close(sweepStop)
		c.sweepWG.Wait()
	}
	if pipeline != nil {
		pipeline.Stop()
	}
	c.deps.Alarm.Stop()
	if sampler != nil {
		sampler.Stop()
	}
	if session != nil {
		session.Release()
	}
	c.deps.Notifier.Post(notify.LevelInfo, "Surveillance stopped.")
}

// HandleFrame scores one sampled frame against the previous one and runs the
// trigger path on a positive verdict. Invoked from the sampler goroutine,
// exactly one frame at a time.
func (c *Controller) HandleFrame(frame *motion.Frame) {
	c.mu.Lock()

	switch c.state {
	case StateActive, StateMotionDetected, StateRecording:
	default:
		c.mu.Unlock()
		return
	}

	var prev *motion.Frame
	if c.session != nil {
		prev = c.session.LastFrame
		c.session.LastFrame = frame
	}

	// Scoring only arms while the shop is closed and no deactivation window
	// is open. The baseline above still advances so re-arming compares
	// against a current frame.
	if c.deact != nil || c.deps.Oracle.IsOpen(c.opening, c.closing) {
		c.mu.Unlock()
		return
	}

	if !motion.Score(prev, frame, c.sensitivity, c.cfg.PercentThreshold) {
		c.mu.Unlock()
		return
	}

	now := c.now()
	if now.Sub(c.lastTrigger) < c.cfg.Cooldown {
		metrics.TriggersSuppressed.WithLabelValues("cooldown").Inc()
		c.mu.Unlock()
		return
	}
	if c.state != StateActive {
		metrics.TriggersSuppressed.WithLabelValues("in_progress").Inc()
		c.mu.Unlock()
		return
	}

	c.lastTrigger = now
	metrics.MotionTriggers.Inc()
	c.setState(StateMotionDetected)
	c.deps.Alarm.Start()

	recordingStarted := false
	if c.pipeline != nil {
		if err := c.pipeline.Start(); err != nil {
			if !errors.Is(err, camera.ErrRecorderUnavailable) {
				log.Printf("[ERROR] Surveillance: start recording: %v", err)
			}
		} else {
			c.setState(StateRecording)
			recordingStarted = true
		}
	}
	c.mu.Unlock()

	// Appended off the sampler goroutine: a slow event sink must not stall
	// the frame cadence. One goroutine per trigger keeps the pair ordered.
	go func() {
		c.appendEvent(events.KindMotionDetected, "Motion detected while shop closed")
		c.appendEvent(events.KindAlarmTriggered, "Alarm triggered")
	}()
	c.deps.Notifier.Post(notify.LevelWarning, "Motion detected!")
	if !recordingStarted {
		log.Printf("[WARN] Surveillance: trigger without recording (alarm-only)")
	}
}

// Respond handles the owner's answer to a ringing alarm. present opens a
// temporary deactivation window (clamped to [5,120] minutes, default 30) and
// logs it; not-present just dismisses the alarm. Either way any in-flight
// recording is finalized and the controller returns to Active.
func (c *Controller) Respond(present bool, minutes int) error {
	c.mu.Lock()
	if c.state != StateMotionDetected && c.state != StateRecording {
		c.mu.Unlock()
		return ErrNoPendingAlarm
	}
	pipeline := c.pipeline
	if present {
		minutes = clampDeactivationMinutes(minutes)
		c.deact = &DeactivationWindow{EndTime: c.now().Add(time.Duration(minutes) * time.Minute)}
		metrics.DeactivationActive.Set(1)
	}
	c.setState(StateActive)
	c.mu.Unlock()

	c.deps.Alarm.Stop()
	if pipeline != nil {
		pipeline.Stop()
	}

	if present {
		c.appendEvent(events.KindTemporaryDeactivation,
			fmt.Sprintf("Motion detection deactivated for %d minutes", minutes))
		c.deps.Notifier.Post(notify.LevelInfo, "Motion detection paused for %d minutes.", minutes)
	} else {
		c.appendEvent(events.KindAlarmDismissed, "Alarm dismissed, monitoring continues")
		c.deps.Notifier.Post(notify.LevelWarning, "Alarm dismissed. Surveillance remains armed.")
	}
	return nil
}

// SetSensitivity adjusts the scoring sensitivity, allowed only while Active.
func (c *Controller) SetSensitivity(v int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateActive {
		return ErrNotActive
	}
	c.sensitivity = motion.ClampSensitivity(v)
	return nil
}

func (c *Controller) Sensitivity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sensitivity
}

// SetShopHours updates the opening window consulted on every frame.
func (c *Controller) SetShopHours(opening, closing string) {
	c.mu.Lock()
	c.opening, c.closing = opening, closing
	c.mu.Unlock()
}

// Status is the dashboard snapshot of the state machine.
type Status struct {
	State        State               `json:"state"`
	Sensitivity  int                 `json:"sensitivity"`
	ShopOpen     bool                `json:"shop_open"`
	AlarmActive  bool                `json:"alarm_active"`
	Deactivation *DeactivationWindow `json:"deactivation,omitempty"`
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deact *DeactivationWindow
	if c.deact != nil {
		d := *c.deact
		deact = &d
	}
	return Status{
		State:        c.state,
		Sensitivity:  c.sensitivity,
		ShopOpen:     c.deps.Oracle.IsOpen(c.opening, c.closing),
		AlarmActive:  c.deps.Alarm.Active(),
		Deactivation: deact,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// onRecordingDone is the pipeline callback; fires once per started capture.
func (c *Controller) onRecordingDone(a *recording.Artifact, err error) {
	c.mu.Lock()
	if c.state == StateRecording {
		c.setState(StateActive)
	}
	c.mu.Unlock()

	if err != nil {
		// Keyed: back-to-back failed captures produce one notice per window.
		c.deps.Notifier.PostOnce("recording-failed", notify.LevelError, "Failed to save recording: %v", err)
		return
	}
	c.deps.Notifier.Post(notify.LevelSuccess, "Recording saved (%d bytes).", a.SizeBytes)
}

// sweepLoop polls for deactivation expiry. Expiry is detected on the sweep
// tick, not the exact end time.
func (c *Controller) sweepLoop(stop <-chan struct{}) {
	defer c.sweepWG.Done()

	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.sweepDeactivation()
		}
	}
}

func (c *Controller) sweepDeactivation() {
	c.mu.Lock()
	if c.deact == nil || c.now().Before(c.deact.EndTime) {
		c.mu.Unlock()
		return
	}
	c.deact = nil
	metrics.DeactivationActive.Set(0)
	c.mu.Unlock()

	c.appendEvent(events.KindTemporaryDeactivation, "Temporary deactivation period ended")
	c.deps.Notifier.Post(notify.LevelInfo, "Motion detection re-enabled.")
}

// setState must be called with the lock held.
func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.deps.OnState != nil {
		c.deps.OnState(s)
	}
}

func (c *Controller) appendEvent(kind events.Kind, details string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.deps.Events.Append(ctx, events.New(kind, details)); err != nil {
		log.Printf("[ERROR] Surveillance: append %s event: %v", kind, err)
	}
}
