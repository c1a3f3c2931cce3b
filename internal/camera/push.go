package camera

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"github.com/technosupport/ts-shopguard/internal/motion"
)

// PushSource is fed over HTTP: the dashboard captures webcam frames in the
// browser, downscales them and posts JPEG snapshots to the ingest endpoint.
// The sampler pulls whatever frame arrived most recently.
type PushSource struct {
	mu     sync.Mutex
	opened bool
	frame  *motion.Frame
	jpeg   []byte
	w, h   int
	rec    *MJPEGRecorder
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

func (s *PushSource) Open(context.Context) error {
	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()
	return nil
}

// Push decodes one JPEG snapshot and makes it the current frame. While a
// recording is running the encoded bytes are appended to it as well.
func (s *PushSource) Push(jpegData []byte) error {
	img, err := jpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	frame := motion.NewFrame(bounds.Dx(), bounds.Dy())
	toFrame(img, frame)

	s.mu.Lock()
	s.frame = frame
	s.jpeg = append(s.jpeg[:0], jpegData...)
	s.w, s.h = bounds.Dx(), bounds.Dy()
	rec := s.rec
	s.mu.Unlock()

	if rec != nil {
		rec.Append(jpegData)
	}
	return nil
}

// Snapshot returns a copy of the most recently pushed JPEG. The dashboard
// uses it as the live preview image.
func (s *PushSource) Snapshot() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jpeg) == 0 {
		return nil, false
	}
	out := make([]byte, len(s.jpeg))
	copy(out, s.jpeg)
	return out, true
}

func (s *PushSource) Resolution() (int, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h, s.w > 0 && s.h > 0
}

func (s *PushSource) Capture(frame *motion.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return ErrDeviceUnavailable
	}
	if s.frame == nil {
		// Nothing pushed yet; the sampler logs and retries next tick.
		return ErrDeviceUnavailable
	}

	copy(frame.Pix, s.frame.Pix)
	return nil
}

func (s *PushSource) Close() error {
	s.mu.Lock()
	s.opened = false
	s.frame = nil
	s.jpeg = nil
	s.rec = nil
	s.mu.Unlock()
	return nil
}

func (s *PushSource) attach(rec *MJPEGRecorder) {
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()
}

func toFrame(img image.Image, frame *motion.Frame) {
	bounds := img.Bounds()
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			frame.Pix[i] = uint8(r >> 8)
			frame.Pix[i+1] = uint8(g >> 8)
			frame.Pix[i+2] = uint8(b >> 8)
			frame.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}
}

// MJPEGRecorder packages the pushed JPEG stream into a multipart MJPEG blob
// between Start and Stop. No transcoding happens server-side.
type MJPEGRecorder struct {
	mu        sync.Mutex
	recording bool
	buf       bytes.Buffer
	frames    int
}

const mjpegBoundary = "shopguardframe"

// NewMJPEGRecorder binds a recorder to the push source. RecorderFactory
// compatible.
func NewMJPEGRecorder(src VideoSource) (Recorder, error) {
	push, ok := src.(*PushSource)
	if !ok {
		return nil, ErrRecorderUnavailable
	}
	rec := &MJPEGRecorder{}
	push.attach(rec)
	return rec, nil
}

func (r *MJPEGRecorder) Start() error {
	r.mu.Lock()
	r.buf.Reset()
	r.frames = 0
	r.recording = true
	r.mu.Unlock()
	return nil
}

func (r *MJPEGRecorder) Append(jpegData []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	fmt.Fprintf(&r.buf, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(jpegData))
	r.buf.Write(jpegData)
	r.buf.WriteString("\r\n")
	r.frames++
}

func (r *MJPEGRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	if r.frames == 0 {
		return nil, nil
	}
	fmt.Fprintf(&r.buf, "--%s--\r\n", mjpegBoundary)
	out := make([]byte, r.buf.Len())
	copy(out, r.buf.Bytes())
	return out, nil
}

func (r *MJPEGRecorder) MimeType() string {
	return "video/x-motion-jpeg"
}
