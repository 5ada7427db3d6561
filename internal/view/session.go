package view

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bighogz/fintable/internal/models"
	"github.com/bighogz/fintable/internal/telemetry"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// Loader produces the full record set.
type Loader interface {
	Load(ctx context.Context) ([]models.Record, error)
}

type LoaderFunc func(ctx context.Context) ([]models.Record, error)

func (f LoaderFunc) Load(ctx context.Context) ([]models.Record, error) { return f(ctx) }

// Session holds the full record set for the lifetime of a process.
type Session struct {
	mu       sync.RWMutex
	full     []models.Record
	status   Status
	lastErr  error
	loadedAt time.Time
	now      func() time.Time
}

func NewSession() *Session {
	return &Session{full: []models.Record{}, status: StatusPending, now: time.Now}
}

// Load replaces the full set with the loader's result. A failed first load
// leaves the session Failed with no records; a failed reload keeps the
// previously loaded records and only records the error.
func (s *Session) Load(ctx context.Context, l Loader) error {
	recs, err := l.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		if s.status != StatusLoaded {
			s.status = StatusFailed
		}
		return err
	}
	if recs == nil {
		recs = []models.Record{}
	}
	s.full = recs
	s.status = StatusLoaded
	s.lastErr = nil
	s.loadedAt = s.now()
	return nil
}

// Status returns the load status and the error of the last failed load.
func (s *Session) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.lastErr
}

// Full returns a copy of the full record set.
func (s *Session) Full() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.full)
}

// Page is everything needed to render one view of the table.
type Page struct {
	State    State           `json:"state"`
	Rows     []models.Record `json:"rows"`
	Total    int             `json:"total"`
	Status   Status          `json:"status"`
	Error    string          `json:"error,omitempty"`
	LoadedAt *time.Time      `json:"loaded_at,omitempty"`
}

// Failed reports whether the table is empty because loading failed.
func (p Page) Failed() bool { return p.Status == StatusFailed }

// Page derives the rows for st from the full set.
func (s *Session) Page(ctx context.Context, st State) Page {
	_, span := telemetry.Tracer().Start(ctx, "view.Page")
	defer span.End()

	s.mu.RLock()
	full := s.full
	p := Page{State: st, Total: len(s.full), Status: s.status}
	if s.lastErr != nil {
		p.Error = s.lastErr.Error()
	}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		p.LoadedAt = &t
	}
	s.mu.RUnlock()

	// full is never modified in place, only replaced, so deriving outside the lock is safe.
	p.Rows = Derive(full, st)
	span.SetAttributes(
		attribute.Int("records.total", p.Total),
		attribute.Int("records.displayed", len(p.Rows)),
		attribute.String("sort.key", string(st.Sort.Key)),
		attribute.Bool("filters.active", !st.Criteria.IsEmpty()),
	)
	return p
}
