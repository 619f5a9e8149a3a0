package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
)

const (
	day1 = "2026-08-27"
	day2 = "2026-08-28"
)

func testProfile(name string) Profile {
	return Profile{Name: name, Avatar: user.AvatarHuman, Message: "hello"}
}

func TestRecordLoginFirstTime(t *testing.T) {
	reg := NewRegistry()

	result := reg.RecordLogin("u1", testProfile("Aki"), day1)

	assert.Equal(t, 10, result.XPGained)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, "u1", result.Snapshot.ID)
	assert.Equal(t, "Aki", result.Snapshot.Name)
	assert.Equal(t, 10, result.Snapshot.XP)
	assert.Equal(t, 1, result.Snapshot.Level)
	require.Len(t, result.Roster, 1)
	assert.Equal(t, "u1", result.Roster[0].ID)
}

func TestRecordLoginSameDayDedupe(t *testing.T) {
	reg := NewRegistry()

	first := reg.RecordLogin("u1", testProfile("Aki"), day1)
	assert.Equal(t, 10, first.XPGained)

	second := reg.RecordLogin("u1", testProfile("Aki"), day1)
	assert.Equal(t, 0, second.XPGained)
	assert.Equal(t, 10, second.Snapshot.XP)
}

func TestRecordLoginRefreshesProfileOnRepeat(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)
	result := reg.RecordLogin("u1", Profile{Name: "Akira", Avatar: user.AvatarCat, Message: "new"}, day1)

	assert.Equal(t, 0, result.XPGained)
	assert.Equal(t, "Akira", result.Snapshot.Name)
	assert.Equal(t, user.AvatarCat, result.Snapshot.Avatar)
	assert.Equal(t, "new", result.Snapshot.Message)
}

func TestRecordLoginNewDayGrantsAgainAndClearsLedger(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)
	reg.RecordLogin("u2", testProfile("Mike"), day1)

	enc, customErr := reg.RegisterEncounter("u1", "u2", day1)
	require.Nil(t, customErr)
	assert.Equal(t, 5, enc.XPGained)

	// New day: login bonus again, and the u2 entry in the ledger is gone, so
	// the same encounter rewards once more.
	login := reg.RecordLogin("u1", testProfile("Aki"), day2)
	assert.Equal(t, 10, login.XPGained)

	enc, customErr = reg.RegisterEncounter("u1", "u2", day2)
	require.Nil(t, customErr)
	assert.Equal(t, 5, enc.XPGained)
}

func TestRosterTodayFiltersByDay(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)
	reg.RecordLogin("u2", testProfile("Mike"), day1)
	reg.RecordLogin("u3", testProfile("Robo"), day2)

	roster := reg.RosterToday(day1)
	require.Len(t, roster, 2)
	assert.Equal(t, "u1", roster[0].ID)
	assert.Equal(t, "u2", roster[1].ID)

	roster = reg.RosterToday(day2)
	require.Len(t, roster, 1)
	assert.Equal(t, "u3", roster[0].ID)

	assert.Empty(t, reg.RosterToday("1999-01-01"))
}

func TestRegisterEncounterDedupe(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)

	first, customErr := reg.RegisterEncounter("u1", "u2", day1)
	require.Nil(t, customErr)
	assert.Equal(t, 5, first.XPGained)
	assert.Equal(t, 15, first.Snapshot.XP)

	second, customErr := reg.RegisterEncounter("u1", "u2", day1)
	require.Nil(t, customErr)
	assert.Equal(t, 0, second.XPGained)
	assert.Equal(t, 15, second.Snapshot.XP)
}

func TestRegisterEncounterSelfIsNoop(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)

	result, customErr := reg.RegisterEncounter("u1", "u1", day1)
	require.Nil(t, customErr)
	assert.Equal(t, 0, result.XPGained)
	assert.Equal(t, 10, result.Snapshot.XP)
}

func TestRegisterEncounterUnknownSelf(t *testing.T) {
	reg := NewRegistry()

	_, customErr := reg.RegisterEncounter("ghost", "u2", day1)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUserNotFound, customErr.Code)
}

func TestRegisterEncounterAsymmetry(t *testing.T) {
	reg := NewRegistry()

	reg.RecordLogin("u1", testProfile("Aki"), day1)
	reg.RecordLogin("u2", testProfile("Mike"), day1)

	before, ok := reg.Snapshot("u2")
	require.True(t, ok)

	_, customErr := reg.RegisterEncounter("u1", "u2", day1)
	require.Nil(t, customErr)

	// Only the observer's record moves; u2 earns nothing until they report
	// the encounter themselves.
	after, ok := reg.Snapshot("u2")
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestProgressionScenario(t *testing.T) {
	reg := NewRegistry()

	login := reg.RecordLogin("u1", testProfile("Aki"), day1)
	assert.Equal(t, 10, login.Snapshot.XP)
	assert.Equal(t, 1, login.Snapshot.Level)
	assert.Equal(t, 10, login.XPGained)

	enc, customErr := reg.RegisterEncounter("u1", "u2", day1)
	require.Nil(t, customErr)
	assert.Equal(t, 15, enc.Snapshot.XP)
	assert.Equal(t, 5, enc.XPGained)

	login = reg.RecordLogin("u1", testProfile("Aki"), day1)
	assert.Equal(t, 0, login.XPGained)
	assert.Equal(t, 15, login.Snapshot.XP)

	login = reg.RecordLogin("u1", testProfile("Aki"), day2)
	assert.Equal(t, 10, login.XPGained)
	assert.Equal(t, 25, login.Snapshot.XP)

	enc, customErr = reg.RegisterEncounter("u1", "u2", day2)
	require.Nil(t, customErr)
	assert.Equal(t, 5, enc.XPGained)
	assert.Equal(t, 30, enc.Snapshot.XP)

	// Four more distinct encounters push the total to exactly 50: level 2.
	for i, other := range []string{"u3", "u4", "u5", "u6"} {
		enc, customErr = reg.RegisterEncounter("u1", other, day2)
		require.Nil(t, customErr)
		assert.Equal(t, 5, enc.XPGained)

		if i < 3 {
			assert.False(t, enc.LeveledUp)
		}
	}

	assert.Equal(t, 50, enc.Snapshot.XP)
	assert.Equal(t, 2, enc.Snapshot.Level)
	assert.True(t, enc.LeveledUp)
}

func TestSnapshotUnknownUser(t *testing.T) {
	reg := NewRegistry()

	_, ok := reg.Snapshot("nobody")
	assert.False(t, ok)
}

func TestSeedDemoUsers(t *testing.T) {
	reg := NewRegistry()
	reg.SeedDemoUsers(day1)

	roster := reg.RosterToday(day1)
	require.Len(t, roster, 3)

	// Levels come from the curve, not the seed literals.
	assert.Equal(t, 1, roster[0].Level)
	assert.Equal(t, 2, roster[1].Level)
	assert.Equal(t, 3, roster[2].Level)

	// Seeding is one-shot: a second call must not duplicate anyone.
	reg.SeedDemoUsers(day1)
	assert.Len(t, reg.RosterToday(day1), 3)

	// A populated registry is never seeded.
	reg2 := NewRegistry()
	reg2.RecordLogin("u1", testProfile("Aki"), day1)
	reg2.SeedDemoUsers(day1)
	assert.Len(t, reg2.RosterToday(day1), 1)
}
