package camera

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/technosupport/ts-shopguard/internal/metrics"
	"github.com/technosupport/ts-shopguard/internal/motion"
)

// SamplerConfig defines the tick cadence and the stall detection window.
type SamplerConfig struct {
	Interval         time.Duration // frame cadence
	WatchdogInterval time.Duration // quiet period before the cadence counts as stalled
	DefaultWidth     int           // surface size until native resolution known
	DefaultHeight    int
}

// Sampler pulls one frame per tick from a video source and hands it to the
// controller. One sampler per camera session; create a fresh one on restart.
//
// Each tick is one unit of work and completes before the next is scheduled,
// so frame handling never overlaps. A capture failure is logged and the loop
// keeps going; only Stop terminates it.
type Sampler struct {
	cfg     SamplerConfig
	source  VideoSource
	onFrame func(*motion.Frame)

	lastTick atomic.Int64 // unixnano of the last completed tick
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSampler(src VideoSource, cfg SamplerConfig, onFrame func(*motion.Frame)) *Sampler {
	if cfg.Interval == 0 {
		cfg.Interval = 100 * time.Millisecond
	}
	if cfg.WatchdogInterval == 0 {
		cfg.WatchdogInterval = 5 * time.Second
	}
	if cfg.DefaultWidth == 0 {
		cfg.DefaultWidth = 640
	}
	if cfg.DefaultHeight == 0 {
		cfg.DefaultHeight = 480
	}
	return &Sampler{
		cfg:      cfg,
		source:   src,
		onFrame:  onFrame,
		stopChan: make(chan struct{}),
	}
}

func (s *Sampler) Start() {
	s.lastTick.Store(time.Now().UnixNano())
	s.wg.Add(2)
	go s.loop()
	go s.watchdog()
}

// Stop cancels the sampling loop and waits for it to drain. Unconditional
// and idempotent.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Sampler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Sampler) tick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Sampler: capture panic: %v", r)
			metrics.CaptureErrors.Inc()
		}
		s.lastTick.Store(time.Now().UnixNano())
	}()

	w, h := s.cfg.DefaultWidth, s.cfg.DefaultHeight
	if nw, nh, ok := s.source.Resolution(); ok && nw > 0 && nh > 0 {
		w, h = nw, nh
	}

	frame := motion.NewFrame(w, h)
	if err := s.source.Capture(frame); err != nil {
		log.Printf("[ERROR] Sampler: capture failed: %v", err)
		metrics.CaptureErrors.Inc()
		return
	}

	metrics.FramesSampled.Inc()
	s.onFrame(frame)
}

// stalled reports whether no tick has completed for a full watchdog window.
func (s *Sampler) stalled(now time.Time) bool {
	return now.Sub(time.Unix(0, s.lastTick.Load())) > s.cfg.WatchdogInterval
}

// watchdog flags a stalled cadence. The loop only exits through Stop, so a
// stall means a tick is wedged in capture or the frame callback; starting a
// second loop would overlap frame handling, so the watchdog reports instead
// of restarting.
func (s *Sampler) watchdog() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if s.stalled(time.Now()) {
				log.Printf("[WARN] Sampler: no completed tick for over %v", s.cfg.WatchdogInterval)
				metrics.SamplerStalls.Inc()
			}
		}
	}
}
