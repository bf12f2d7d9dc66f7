// Package session owns the fixes recorded while a perimeter is walked and
// hands them to the area estimator once tracking stops.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/models"
)

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotTracking       = errors.New("session is not tracking")
	ErrPaused            = errors.New("session is paused")
)

// State of a tracking session
type State int

const (
	StateIdle State = iota
	StateTracking
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithID overrides the generated session id
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is a single walk around a plot. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	state     State
	fixes     []models.GeoPoint
	result    *area.Result
	startedAt time.Time
	stoppedAt time.Time
	updatedAt time.Time

	logger *zap.Logger
	now    func() time.Time
}

// New creates an idle session
func New(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		state:  StateIdle,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("session", s.id))
	s.updatedAt = s.now()
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// LastActivity is the time of the last state change or recorded fix
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins a new walk. Fixes and the result of a previous walk are discarded.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle && s.state != StateStopped {
		return s.transitionError(StateTracking)
	}

	s.fixes = nil
	s.result = nil
	s.startedAt = s.now()
	s.stoppedAt = time.Time{}
	s.updatedAt = s.startedAt
	s.state = StateTracking

	s.logger.Info("tracking started")
	return nil
}

// Pause stops accepting fixes until Resume
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking {
		return s.transitionError(StatePaused)
	}
	s.state = StatePaused
	s.updatedAt = s.now()

	s.logger.Info("tracking paused", zap.Int("fixes", len(s.fixes)))
	return nil
}

// Resume continues a paused walk
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return s.transitionError(StateTracking)
	}
	s.state = StateTracking
	s.updatedAt = s.now()

	s.logger.Info("tracking resumed", zap.Int("fixes", len(s.fixes)))
	return nil
}

// Record appends a fix. Fixes delivered while paused are dropped with ErrPaused.
func (s *Session) Record(fix models.GeoPoint) error {
	return s.RecordAll(fix)
}

// RecordAll appends a batch of fixes in order. Either every fix is recorded
// or, when the session is not tracking, none is.
func (s *Session) RecordAll(fixes ...models.GeoPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateTracking:
	case StatePaused:
		return ErrPaused
	default:
		return fmt.Errorf("%w: state %s", ErrNotTracking, s.state)
	}

	s.fixes = append(s.fixes, fixes...)
	s.updatedAt = s.now()
	s.logger.Debug("fixes recorded", zap.Int("batch", len(fixes)), zap.Int("fixes", len(s.fixes)))
	return nil
}

// Stop ends the walk and estimates the enclosed area.
// The state flips to stopped before the estimate runs, so the fix sequence
// is frozen for the whole computation.
func (s *Session) Stop() (area.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateTracking && s.state != StatePaused {
		return area.Result{}, s.transitionError(StateStopped)
	}
	s.state = StateStopped
	s.stoppedAt = s.now()
	s.updatedAt = s.stoppedAt

	result := area.Estimate(s.fixes)
	s.result = &result

	s.logger.Info("tracking stopped",
		zap.Int("fixes", len(s.fixes)),
		zap.Float64("area_sqm", result.SquareMeters),
		zap.String("label", result.Label()),
		zap.Duration("elapsed", s.stoppedAt.Sub(s.startedAt)))
	return result, nil
}

// Fixes returns a copy of the recorded fixes
func (s *Session) Fixes() []models.GeoPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.GeoPoint(nil), s.fixes...)
}

// Result returns the area of the last stopped walk
func (s *Session) Result() (area.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return area.Result{}, false
	}
	return *s.result, true
}

// Snapshot is a point-in-time view of a session
type Snapshot struct {
	ID        string       `json:"id"`
	State     State        `json:"state"`
	Fixes     int          `json:"fixes"`
	StartedAt time.Time    `json:"started_at,omitempty"`
	StoppedAt time.Time    `json:"stopped_at,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
	Result    *area.Result `json:"result,omitempty"`
}

// Snapshot captures the session state under a single lock
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		Fixes:     len(s.fixes),
		StartedAt: s.startedAt,
		StoppedAt: s.stoppedAt,
		UpdatedAt: s.updatedAt,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) transitionError(to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
}
