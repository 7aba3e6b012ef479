package quiz

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sholas-io/onboard/pkg/models"
)

var (
	ErrNoSession     = errors.New("no active quiz session")
	ErrSessionClosed = errors.New("quiz session already graded")
	ErrBadQuestion   = errors.New("question index out of range")
	ErrBadOption     = errors.New("option index out of range")
)

// ExpireFunc is invoked exactly once when a session hits its deadline before
// a manual submit. It runs on the session's timer goroutine.
type ExpireFunc func(userID string, res Result)

// Session is one in-flight quiz attempt. The countdown ticks once per second;
// when it reaches zero the session grades whatever is currently selected.
type Session struct {
	UserID string

	mu        sync.Mutex
	questions []models.QuizQuestion
	answers   []int
	remaining int

	stop   chan struct{}
	once   sync.Once
	result Result
}

// Questions returns the session's question snapshot. Callers must not expose
// CorrectAnswer to candidates.
func (s *Session) Questions() []models.QuizQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.QuizQuestion, len(s.questions))
	copy(out, s.questions)
	return out
}

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Answer records the selected option for a question. Selecting again
// overwrites the previous choice.
func (s *Session) Answer(question, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining <= 0 {
		return ErrSessionClosed
	}
	if question < 0 || question >= len(s.questions) {
		return ErrBadQuestion
	}
	if option < 0 || option >= len(s.questions[question].Options) {
		return ErrBadOption
	}
	s.answers[question] = option
	return nil
}

// finish grades the session exactly once and reports whether this call was
// the one that did it.
func (s *Session) finish() (Result, bool) {
	first := false
	s.once.Do(func() {
		s.mu.Lock()
		s.result = Score(s.answers, s.questions)
		s.remaining = 0
		s.mu.Unlock()
		close(s.stop)
		first = true
	})
	return s.result, first
}

func (s *Session) run(onExpire func(*Session)) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.mu.Lock()
			s.remaining--
			rem := s.remaining
			s.mu.Unlock()
			if rem <= 0 {
				onExpire(s)
				return
			}
		}
	}
}

// Manager owns the active sessions, one per user.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	duration time.Duration
	onExpire ExpireFunc
	logger   *slog.Logger
}

// NewManager creates a session manager. duration is the per-attempt time
// limit; onExpire receives deadline-forced results and may be nil.
func NewManager(duration time.Duration, onExpire ExpireFunc, logger *slog.Logger) *Manager {
	if duration <= 0 {
		duration = 600 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		duration: duration,
		onExpire: onExpire,
		logger:   logger,
	}
}

// Start opens a fresh session for the user, replacing any previous attempt.
// Replacement discards the old session without grading it.
func (m *Manager) Start(userID string, questions []models.QuizQuestion) *Session {
	answers := make([]int, len(questions))
	for i := range answers {
		answers[i] = Unanswered
	}
	s := &Session{
		UserID:    userID,
		questions: questions,
		answers:   answers,
		remaining: int(m.duration / time.Second),
		stop:      make(chan struct{}),
	}

	m.mu.Lock()
	if old, ok := m.sessions[userID]; ok {
		old.finish()
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	go s.run(m.expire)
	return s
}

// Get returns the user's active session, or ErrNoSession.
func (m *Manager) Get(userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Submit grades and removes the user's session. If the deadline already
// forced a submit, the graded result is returned unchanged.
func (m *Manager) Submit(userID string) (Result, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	if !ok {
		return Result{}, ErrNoSession
	}
	res, _ := s.finish()
	return res, nil
}

func (m *Manager) expire(s *Session) {
	res, first := s.finish()
	if !first {
		return
	}

	m.mu.Lock()
	if cur, ok := m.sessions[s.UserID]; ok && cur == s {
		delete(m.sessions, s.UserID)
	}
	m.mu.Unlock()

	m.logger.Info("quiz deadline reached, auto-submitting",
		slog.String("user_id", s.UserID),
		slog.Int("percent", res.Percent),
	)
	if m.onExpire != nil {
		m.onExpire(s.UserID, res)
	}
}

// Close stops every timer goroutine without invoking expiry callbacks.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.finish()
		delete(m.sessions, id)
	}
}
