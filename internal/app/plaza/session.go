/*
Package plaza contains the core logic for plaza viewing sessions: presenting
newly seen visitors to a viewer one at a time and streaming the result.

This file defines the Session struct, the sequencer at the center of the
plaza. A session is a two-state machine (idle / active) driven by a single
goroutine: visitors queue up in arrival order, the head of the queue occupies
the one display slot for a fixed dwell time, and each activation fires the
encounter reward asynchronously. Every activation is tagged with a lock token;
any completion arriving with a stale token is discarded rather than applied to
whichever visitor holds the slot now.
*/
package plaza

import (
	"time"

	"github.com/rs/zerolog"

	"plaza/internal/app/presence"
	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
	"plaza/internal/pkg/logx"
)

const (
	// DwellDuration is how long each visitor occupies the display slot,
	// regardless of when (or whether) the encounter registration resolves.
	DwellDuration = 6 * time.Second

	// enqueueChannelBuffer sizes the inbound visitor channel.
	enqueueChannelBuffer = 64

	// eventChannelBuffer sizes the outbound event stream.
	eventChannelBuffer = 64
)

// Registrar is the encounter side effect a session triggers once per
// presented visitor. *presence.Registry satisfies it.
type Registrar interface {
	RegisterEncounter(selfID, otherID, today string) (presence.EncounterResult, *errs.CustomError)
}

// EventType labels a state change emitted to the presentation layer.
type EventType string

const (
	// EventVisitorActive fires when a visitor takes the display slot.
	EventVisitorActive EventType = "visitor_active"

	// EventEncounterResult fires when the reward for the active visitor resolves.
	EventEncounterResult EventType = "encounter_result"

	// EventVisitorCleared fires when the slot is vacated after the dwell time.
	EventVisitorCleared EventType = "visitor_cleared"
)

// Event is one state change of the session's display slot.
type Event struct {
	Type    EventType
	Visitor *user.Snapshot
	Outcome *Outcome
}

// Outcome is the encounter reward attached to the active visitor.
type Outcome struct {
	XPGained  int
	LeveledUp bool
}

// slotResult is an asynchronous registration completion tagged with the
// activation it belongs to.
type slotResult struct {
	token   uint64
	outcome Outcome
}

// SessionCleanupMsg notifies the Manager that a session's Run loop ended.
type SessionCleanupMsg struct {
	SessionID string
}

// Session presents newly seen visitors to one viewer, strictly first-come
// first-served, one at a time. All state below the channels is owned by the
// Run goroutine and never touched from outside it.
type Session struct {
	// ID uniquely identifies this viewing session.
	ID string

	// ViewerID is the user watching the plaza.
	ViewerID string

	// registrar performs the encounter reward for each presented visitor.
	registrar Registrar

	// today supplies the day key for encounter dedupe.
	today presence.DayFunc

	// dwell is how long each visitor holds the slot.
	dwell time.Duration

	// enqueue receives visitor snapshots from the roster and login stream.
	enqueue chan user.Snapshot

	// results receives asynchronous registration completions.
	results chan slotResult

	// events is the outbound stream consumed by the presentation layer.
	// Closed when the Run loop exits.
	events chan Event

	// stopChan signals the Run loop to terminate.
	stopChan chan struct{}

	// cleanupChan notifies the Manager on exit; nil for standalone sessions.
	cleanupChan chan<- SessionCleanupMsg

	// --- state owned by the Run goroutine ---

	// queue holds visitors awaiting presentation, head first. Never contains
	// the current occupant.
	queue []user.Snapshot

	// seen holds every id ever enqueued this session, so a visitor is
	// presented at most once no matter how often the roster repeats them.
	seen map[string]struct{}

	// occupant is the visitor currently holding the display slot, nil when idle.
	occupant *user.Snapshot

	// token tags the current activation. Monotonically increasing; a timer
	// fire or registration result carrying an older token is stale.
	token uint64

	// dwellTimer runs while a visitor occupies the slot.
	dwellTimer *time.Timer

	// timerToken is the activation the running timer belongs to.
	timerToken uint64

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a Session ready to Run. A zero dwell falls back to
// DwellDuration. cleanupChan may be nil when no Manager owns the session.
func NewSession(id, viewerID string, registrar Registrar, today presence.DayFunc, dwell time.Duration, cleanupChan chan<- SessionCleanupMsg) *Session {
	if dwell <= 0 {
		dwell = DwellDuration
	}

	sessionLogger := logx.Logger().With().
		Str("session_id", id).
		Str("viewer_id", viewerID).
		Logger()

	return &Session{
		ID:          id,
		ViewerID:    viewerID,
		registrar:   registrar,
		today:       today,
		dwell:       dwell,
		enqueue:     make(chan user.Snapshot, enqueueChannelBuffer),
		results:     make(chan slotResult, enqueueChannelBuffer),
		events:      make(chan Event, eventChannelBuffer),
		stopChan:    make(chan struct{}),
		cleanupChan: cleanupChan,
		seen:        make(map[string]struct{}),
		logger:      sessionLogger,
	}
}

// Events returns the outbound stream of slot state changes. The channel is
// closed when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Enqueue offers a visitor to the session. Safe to call from any goroutine;
// drops the visitor with a warning if the session cannot keep up.
func (s *Session) Enqueue(visitor user.Snapshot) {
	select {
	case s.enqueue <- visitor:
	case <-s.stopChan:
	default:
		s.logger.Warn().Str("visitor_id", visitor.ID).Msg("Session enqueue channel full, visitor dropped.")
	}
}

// Stop signals the Run loop to terminate. Idempotent.
func (s *Session) Stop() {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
}

// Run drives the session until Stop. It is the only goroutine that touches
// the queue, seen-set, occupant, and token.
func (s *Session) Run() {
	defer func() {
		if s.dwellTimer != nil {
			s.dwellTimer.Stop()
		}

		close(s.events)

		if s.cleanupChan != nil {
			func() {
				defer func() {
					if r := recover(); r != nil {
						logx.Warn("Recovered from panic during Manager cleanup notification (channel likely closed).")
					}
				}()

				select {
				case s.cleanupChan <- SessionCleanupMsg{SessionID: s.ID}:
				default:
					s.logger.Warn().Msg("Manager cleanup channel blocked/full. Skipping cleanup notification.")
				}
			}()
		}

		s.logger.Info().Msg("Session Run loop finished.")
	}()

	s.logger.Info().Dur("dwell", s.dwell).Msg("Session started.")

	for {
		select {
		case visitor := <-s.enqueue:
			s.admit(visitor)
			s.advance()

		case res := <-s.results:
			s.applyResult(res)

		case <-s.timerC():
			s.vacate(s.timerToken)
			s.advance()

		case <-s.stopChan:
			s.logger.Info().Msg("Session stop requested.")
			return
		}
	}
}

// timerC exposes the dwell timer channel to the select loop; a nil channel
// blocks forever while the slot is idle.
func (s *Session) timerC() <-chan time.Time {
	if s.dwellTimer == nil {
		return nil
	}
	return s.dwellTimer.C
}

// admit appends a visitor to the queue unless it was already enqueued this
// session or is the viewer themself.
func (s *Session) admit(visitor user.Snapshot) {
	if visitor.ID == s.ViewerID {
		return
	}

	if _, ok := s.seen[visitor.ID]; ok {
		s.logger.Debug().Str("visitor_id", visitor.ID).Msg("Visitor already presented this session, ignoring.")
		return
	}

	s.seen[visitor.ID] = struct{}{}
	s.queue = append(s.queue, visitor)

	s.logger.Debug().
		Str("visitor_id", visitor.ID).
		Int("queue_len", len(s.queue)).
		Msg("Visitor queued.")
}

// advance activates the head of the queue when the slot is idle. On entering
// the active state it starts the dwell timer and fires the encounter reward
// asynchronously, both tagged with the fresh activation token.
func (s *Session) advance() {
	if s.occupant != nil || len(s.queue) == 0 {
		return
	}

	next := s.queue[0]
	s.queue = s.queue[1:]

	s.token++
	s.occupant = &next

	s.startDwellTimer()

	s.logger.Info().
		Str("visitor_id", next.ID).
		Uint64("token", s.token).
		Msg("Visitor activated.")

	s.emit(Event{Type: EventVisitorActive, Visitor: &next})

	go s.registerEncounter(s.token, next.ID)
}

// startDwellTimer arms the dwell timer for the current activation, replacing
// any timer from a previous one.
func (s *Session) startDwellTimer() {
	if s.dwellTimer != nil {
		if !s.dwellTimer.Stop() {
			select {
			case <-s.dwellTimer.C:
			default:
			}
		}
		s.dwellTimer.Reset(s.dwell)
	} else {
		s.dwellTimer = time.NewTimer(s.dwell)
	}

	s.timerToken = s.token
}

// registerEncounter performs the reward call off the loop goroutine and posts
// the completion back, tagged with the activation it belongs to. The display
// is time-driven: a slow or failing call here never delays the slot.
func (s *Session) registerEncounter(token uint64, visitorID string) {
	result, err := s.registrar.RegisterEncounter(s.ViewerID, visitorID, s.today())
	if err != nil {
		s.logger.Warn().
			Str("visitor_id", visitorID).
			Str("error", err.Error()).
			Msg("Encounter registration failed.")
		return
	}

	select {
	case s.results <- slotResult{token: token, outcome: Outcome{XPGained: result.XPGained, LeveledUp: result.LeveledUp}}:
	case <-s.stopChan:
	}
}

// applyResult attaches a registration outcome to the occupant it was fired
// for. A completion whose token no longer matches belongs to a vacated slot
// and is dropped; it must not resurrect the old visitor or decorate the new one.
func (s *Session) applyResult(res slotResult) {
	if res.token != s.token || s.occupant == nil {
		s.logger.Debug().
			Uint64("result_token", res.token).
			Uint64("current_token", s.token).
			Msg("Stale encounter result discarded.")
		return
	}

	outcome := res.outcome
	s.emit(Event{Type: EventEncounterResult, Outcome: &outcome})
}

// vacate clears the slot when the dwell timer for the current activation
// fires. A stale timer (token mismatch) only discards its own bookkeeping.
func (s *Session) vacate(token uint64) {
	s.dwellTimer = nil

	if token != s.token || s.occupant == nil {
		s.logger.Debug().
			Uint64("timer_token", token).
			Uint64("current_token", s.token).
			Msg("Stale dwell timer ignored.")
		return
	}

	s.logger.Info().
		Str("visitor_id", s.occupant.ID).
		Uint64("token", token).
		Msg("Visitor dwell elapsed, slot vacated.")

	s.occupant = nil

	s.emit(Event{Type: EventVisitorCleared})
}

// emit pushes an event to the presentation layer without ever blocking the
// loop; a consumer that cannot keep up loses events rather than stalling the
// sequencer.
func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Session event channel full, event dropped.")
	}
}
