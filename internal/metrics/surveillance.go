package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesSampled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_frames_sampled_total",
		Help: "Total frames pulled off the video source",
	})

	CaptureErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_capture_errors_total",
		Help: "Per-tick capture failures (loop continues)",
	})

	SamplerStalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_sampler_stalls_total",
		Help: "Watchdog detections of a stalled sampling cadence",
	})

	MotionTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_motion_triggers_total",
		Help: "Accepted motion triggers",
	})

	TriggersSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopguard_triggers_suppressed_total",
		Help: "Motion verdicts rejected before triggering",
	}, []string{"reason"})

	RecordingsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_recordings_saved_total",
		Help: "Recording artifacts delivered to the sink",
	})

	RecordingsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_recordings_failed_total",
		Help: "Finalizations that produced no artifact",
	})

	NoticesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopguard_notices_dropped_total",
		Help: "User notices dropped because the channel was full",
	})

	DeactivationActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shopguard_deactivation_active",
		Help: "1 while a temporary deactivation window is open",
	})
)
