package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/contactevin2u/orderops-console/internal/application/intake"
	"github.com/contactevin2u/orderops-console/internal/application/ops"
)

// SessionCookie identifies a browser session. Each session owns its own
// intake and operations workflow state exclusively; nothing is shared.
const SessionCookie = "oc_session"

const sessionLocal = "console_session"

// Session is one browser session's workflow state.
type Session struct {
	ID       string
	Intake   *intake.Workflow
	Ops      *ops.Workflow
	lastSeen time.Time
}

// SessionFactory builds the workflow pair for a new session.
type SessionFactory func(id string) *Session

// SessionStore keeps sessions in memory with a sliding TTL. The console is
// deliberately stateless beyond this: the backend is the source of truth and
// an expired session simply starts over from Empty.
type SessionStore struct {
	factory SessionFactory
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore builds the store.
func NewSessionStore(ttl time.Duration, factory SessionFactory) *SessionStore {
	return &SessionStore{
		factory:  factory,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Middleware resolves the session from the request cookie, creating one (and
// setting the cookie) when absent or expired, and stores it in locals.
func (s *SessionStore) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(SessionCookie)
		sess, fresh := s.getOrCreate(id)
		if fresh {
			c.Cookie(&fiber.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

// SessionFrom returns the session placed in locals by the middleware.
func SessionFrom(c *fiber.Ctx) *Session {
	sess, _ := c.Locals(sessionLocal).(*Session)
	return sess
}

func (s *SessionStore) getOrCreate(id string) (sess *Session, fresh bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != "" {
		if existing, ok := s.sessions[id]; ok && now.Sub(existing.lastSeen) < s.ttl {
			existing.lastSeen = now
			return existing, false
		}
	}
	sess = s.factory(uuid.NewString())
	sess.lastSeen = now
	s.sessions[sess.ID] = sess
	return sess, true
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle past the TTL and reports how many were removed.
func (s *SessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) >= s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps periodically until ctx is done.
func (s *SessionStore) RunSweeper(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Sweep(now)
		}
	}
}
