// Package session holds the in-memory state of one ideation workspace: the
// current event context, the idea cards, the inputs that produced them and
// the generated annual calendars.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/cache"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/calendar"
	apperrors "github.com/ZanzyTHEbar/marcom-ideamaker/internal/errors"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/events"
	"github.com/ZanzyTHEbar/marcom-ideamaker/internal/ideation"
)

// Status is the state of the last operation.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Operation kinds.
const (
	OpIdeas    = "ideas"
	OpRefine   = "refine"
	OpCalendar = "calendar"
)

// MsgCardNotFound is returned for unknown card ids.
const MsgCardNotFound = "카드를 찾을 수 없습니다."

// Operation describes the most recent user action.
type Operation struct {
	Kind       string    `json:"kind,omitempty"`
	Status     Status    `json:"status"`
	Label      string    `json:"label,omitempty"`
	Progress   int       `json:"progress"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Snapshot records the inputs of the current batch.
type Snapshot struct {
	BatchID     string             `json:"batch_id"`
	Brand       string             `json:"brand"`
	Country     string             `json:"country"`
	Target      time.Time          `json:"target_day"`
	Channels    []ideation.Channel `json:"channels"`
	Goals       []string           `json:"goals"`
	Model       string             `json:"model"`
	Temperature float64            `json:"creativity"`
	CreatedAt   time.Time          `json:"created_at"`
}

// YearEntry is a generated calendar with its rendered files.
type YearEntry struct {
	Calendar calendar.Calendar
	Rows     []calendar.Row
	Files    map[calendar.Format]calendar.File
}

// Session is safe for concurrent use; the HTTP server handles requests on
// separate goroutines.
type Session struct {
	mu       sync.RWMutex
	events   events.Context
	cards    []ideation.Card
	snapshot *Snapshot
	lastErr  string
	op       Operation
	years    *cache.Cache[int, YearEntry]
	now      func() time.Time
}

// New creates an empty session. Calendars are kept for calendarTTL, or
// until replaced when calendarTTL is zero.
func New(calendarTTL time.Duration) *Session {
	return &Session{
		events: events.Context{},
		op:     Operation{Status: StatusIdle},
		years:  cache.New[int, YearEntry](calendarTTL),
		now:    time.Now,
	}
}

// BeginOperation marks kind as running and clears the last error.
func (s *Session) BeginOperation(kind, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = ""
	s.op = Operation{Kind: kind, Status: StatusRunning, Label: label, StartedAt: s.now()}
}

// UpdateOperation changes the label and progress of the running operation.
func (s *Session) UpdateOperation(label string, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.op.Status != StatusRunning {
		return
	}
	s.op.Label = label
	s.op.Progress = progress
}

// CompleteOperation marks the running operation done.
func (s *Session) CompleteOperation(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.op.Status = StatusComplete
	s.op.Label = label
	s.op.Progress = 100
	s.op.FinishedAt = s.now()
}

// FailOperation marks the running operation failed and records message as
// the last error.
func (s *Session) FailOperation(label, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.op.Status = StatusError
	s.op.Label = label
	s.op.FinishedAt = s.now()
	s.lastErr = message
}

// Operation returns the last operation.
func (s *Session) Operation() Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.op
}

// LastError returns the message of the last failure, or "".
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetEvents replaces the event context. A nil context clears it.
func (s *Session) SetEvents(ctx events.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx == nil {
		ctx = events.Context{}
	}
	s.events = ctx.Clone()
}

// SetBatch stores the cards of a finished batch with the inputs that
// produced them.
func (s *Session) SetBatch(snapshot Snapshot, cards []ideation.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = s.now()
	}
	s.snapshot = &snapshot
	s.cards = append([]ideation.Card(nil), cards...)
}

// Events returns a copy of the event context.
func (s *Session) Events() events.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.Clone()
}

// Cards returns a copy of the current cards.
func (s *Session) Cards() []ideation.Card {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ideation.Card(nil), s.cards...)
}

// Card finds a card by id.
func (s *Session) Card(id string) (ideation.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return ideation.Card{}, apperrors.NewNotFoundError(MsgCardNotFound)
}

// ReplaceCard swaps the card with the given id, keeping its position.
func (s *Session) ReplaceCard(id string, card ideation.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cards {
		if c.ID == id {
			card.ID = id
			s.cards[i] = card
			return nil
		}
	}
	return apperrors.NewNotFoundError(MsgCardNotFound)
}

// Snapshot returns the inputs of the current batch.
func (s *Session) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return Snapshot{}, false
	}
	return *s.snapshot, true
}

// StoreCalendar caches a generated year, replacing any earlier build.
func (s *Session) StoreCalendar(entry YearEntry) {
	if entry.Files == nil {
		entry.Files = map[calendar.Format]calendar.File{}
	}
	if entry.Rows == nil {
		entry.Rows = calendar.Rows(entry.Calendar.Events)
	}
	s.years.Set(entry.Calendar.Year, entry)
}

// Calendar returns the cached build of year.
func (s *Session) Calendar(year int) (YearEntry, bool) {
	return s.years.Get(year)
}

// CalendarFile returns the rendered file of year in format, building and
// caching it on first use.
func (s *Session) CalendarFile(year int, format calendar.Format) (calendar.File, error) {
	entry, ok := s.years.Get(year)
	if !ok {
		return calendar.File{}, apperrors.NewNotFoundError("먼저 연간 이벤트를 생성해주세요.")
	}
	if f, ok := entry.Files[format]; ok {
		return f, nil
	}

	f, err := calendar.BuildFile(entry.Rows, year, format)
	if err != nil {
		return calendar.File{}, err
	}

	// copy the map so readers of the previous entry never see a write
	files := make(map[calendar.Format]calendar.File, len(entry.Files)+1)
	for k, v := range entry.Files {
		files[k] = v
	}
	files[format] = f
	entry.Files = files
	s.years.Set(year, entry)
	return f, nil
}

// CalendarYears lists the cached years in ascending order.
func (s *Session) CalendarYears() []int {
	years := s.years.Keys()
	sort.Ints(years)
	return years
}

// Reset clears all state.
func (s *Session) Reset() {
	s.mu.Lock()
	s.events = events.Context{}
	s.cards = nil
	s.snapshot = nil
	s.lastErr = ""
	s.op = Operation{Status: StatusIdle}
	s.mu.Unlock()

	s.years.Clear()
}
