/*
Package presence owns the plaza's user records: who exists, who showed up
today, and which peers each user has already been rewarded for encountering.

This file defines the Registry, the process-wide in-memory store. Records are
created on first login and live for the process lifetime. All access is
serialized through the Registry's lock; nothing is persisted.
*/
package presence

import (
	"sync"

	"github.com/rs/zerolog"

	"plaza/internal/app/progression"
	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
	"plaza/internal/pkg/logx"
)

// record is the internal, mutable state held per user. Only the public
// Snapshot projection ever leaves the package; the encounters ledger stays
// private.
type record struct {
	id      string
	name    string
	avatar  user.Avatar
	message string

	// xp only ever grows; level is kept consistent with xp after every mutation.
	xp    int
	level int

	// lastLogin is the day key of the most recent login, empty for never.
	lastLogin string

	// encounters maps peer id to the day key the encounter reward was last
	// granted. Cleared on the first login of each new day.
	encounters map[string]string
}

// Profile carries the caller-supplied fields overwritten on every login.
type Profile struct {
	Name    string
	Avatar  user.Avatar
	Message string
}

// LoginResult is the outcome of RecordLogin.
type LoginResult struct {
	Snapshot  user.Snapshot
	Roster    []user.Snapshot
	XPGained  int
	LeveledUp bool
}

// EncounterResult is the outcome of RegisterEncounter.
type EncounterResult struct {
	Snapshot  user.Snapshot
	XPGained  int
	LeveledUp bool
}

// Registry is the in-memory presence store. Construct with NewRegistry;
// multiple independent instances are fine (tests rely on that).
type Registry struct {
	// records holds every user ever seen, keyed by user id.
	records map[string]*record

	// order tracks record creation order so roster output is deterministic.
	order []string

	// mu serializes all record access and mutation.
	mu sync.RWMutex

	// structured logger with registry context.
	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	registryLogger := logx.Logger().With().Str("component", "PresenceRegistry").Logger()

	return &Registry{
		records: make(map[string]*record),
		order:   make([]string, 0),
		logger:  registryLogger,
	}
}

// snapshot projects a record to its public form. Caller must hold the lock.
func snapshot(rec *record) user.Snapshot {
	return user.Snapshot{
		ID:      rec.id,
		Name:    rec.name,
		Avatar:  rec.avatar,
		Message: rec.message,
		Level:   rec.level,
		XP:      rec.xp,
	}
}

// refreshLevel recomputes the cached level from xp and reports whether the
// record crossed a level boundary upward. Caller must hold the lock.
func refreshLevel(rec *record) bool {
	before := rec.level
	rec.level = progression.LevelFromXP(rec.xp).Level
	return rec.level > before
}

// rosterLocked collects snapshots of everyone whose last login matches today,
// in record creation order. Caller must hold at least a read lock.
func (reg *Registry) rosterLocked(today string) []user.Snapshot {
	roster := make([]user.Snapshot, 0, len(reg.order))
	for _, id := range reg.order {
		rec := reg.records[id]
		if rec.lastLogin == today {
			roster = append(roster, snapshot(rec))
		}
	}
	return roster
}

// RecordLogin registers a user's arrival at the plaza for the given day.
//
// The profile fields always overwrite the stored ones, even for a repeat
// login. Experience is granted only on the first login of a day; that first
// login also clears the user's encounter ledger so every peer can be
// re-encountered on the new day. Total over all inputs, never fails.
func (reg *Registry) RecordLogin(userID string, profile Profile, today string) LoginResult {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rec, ok := reg.records[userID]
	if !ok {
		rec = &record{
			id:         userID,
			xp:         0,
			level:      1,
			encounters: make(map[string]string),
		}
		reg.records[userID] = rec
		reg.order = append(reg.order, userID)

		reg.logger.Info().Str("user_id", userID).Msg("New user record created.")
	}

	rec.name = profile.Name
	rec.avatar = profile.Avatar
	rec.message = profile.Message

	xpGained := 0
	if rec.lastLogin != today {
		rec.lastLogin = today
		rec.encounters = make(map[string]string)
		rec.xp += progression.XPPerLogin
		xpGained = progression.XPPerLogin
	}

	leveledUp := refreshLevel(rec)

	reg.logger.Info().
		Str("user_id", userID).
		Str("day", today).
		Int("xp_gained", xpGained).
		Int("xp_total", rec.xp).
		Int("level", rec.level).
		Msg("Login recorded.")

	return LoginResult{
		Snapshot:  snapshot(rec),
		Roster:    reg.rosterLocked(today),
		XPGained:  xpGained,
		LeveledUp: leveledUp,
	}
}

// Snapshot returns the public projection for one user, reporting whether the
// user has ever logged in.
func (reg *Registry) Snapshot(userID string) (user.Snapshot, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	rec, ok := reg.records[userID]
	if !ok {
		return user.Snapshot{}, false
	}
	return snapshot(rec), true
}

// RosterToday returns the snapshot of every user whose last login matches
// the given day key, in record creation order.
func (reg *Registry) RosterToday(today string) []user.Snapshot {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.rosterLocked(today)
}

// RegisterEncounter grants the observing user the encounter reward for a peer,
// at most once per peer per day.
//
// Only selfID's record is touched: encounter XP models "I noticed this peer
// today", not a mutual handshake. The peer earns their own reward when they
// report the encounter from their side. Self-encounters are a no-op. Fails
// with ErrUserNotFound when selfID has never logged in.
func (reg *Registry) RegisterEncounter(selfID, otherID, today string) (EncounterResult, *errs.CustomError) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rec, ok := reg.records[selfID]
	if !ok {
		reg.logger.Warn().Str("user_id", selfID).Msg("Encounter reported for unknown user.")
		return EncounterResult{}, errs.NewError(errs.ErrUserNotFound)
	}

	xpGained := 0
	if selfID != otherID && rec.encounters[otherID] != today {
		rec.encounters[otherID] = today
		rec.xp += progression.XPPerEncounter
		xpGained = progression.XPPerEncounter
	}

	leveledUp := refreshLevel(rec)

	reg.logger.Debug().
		Str("user_id", selfID).
		Str("other_id", otherID).
		Str("day", today).
		Int("xp_gained", xpGained).
		Msg("Encounter registered.")

	return EncounterResult{
		Snapshot:  snapshot(rec),
		XPGained:  xpGained,
		LeveledUp: leveledUp,
	}, nil
}
