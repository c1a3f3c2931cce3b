package camera

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/technosupport/ts-shopguard/internal/motion"
)

// MockSource
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Open(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSource) Resolution() (int, int, bool) {
	args := m.Called()
	return args.Int(0), args.Int(1), args.Bool(2)
}

func (m *MockSource) Capture(frame *motion.Frame) error {
	args := m.Called(frame)
	return args.Error(0)
}

func (m *MockSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRecorder) Stop() ([]byte, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRecorder) MimeType() string {
	args := m.Called()
	return args.String(0)
}

// StaticSource serves a fixed gray level every capture. Handy for wiring the
// sampler and controller in tests without mock bookkeeping.
type StaticSource struct {
	mu     sync.Mutex
	level  uint8
	w, h   int
	failed error
	opened bool
}

func NewStaticSource(w, h int) *StaticSource {
	return &StaticSource{w: w, h: h, level: 100}
}

func (s *StaticSource) SetLevel(level uint8) {
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
}

func (s *StaticSource) FailWith(err error) {
	s.mu.Lock()
	s.failed = err
	s.mu.Unlock()
}

func (s *StaticSource) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

func (s *StaticSource) Resolution() (int, int, bool) {
	return s.w, s.h, true
}

func (s *StaticSource) Capture(frame *motion.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed != nil {
		return s.failed
	}
	for i := 0; i < frame.PixelCount(); i++ {
		frame.SetGray(i, s.level)
	}
	return nil
}

func (s *StaticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}
