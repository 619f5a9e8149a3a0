/*
Package progression converts cumulative experience into levels.

The curve is quadratic: advancing past level L costs 50*L*L XP, with no level
cap. Everything here is pure integer arithmetic; the package holds no state.
*/
package progression

// XPBase is the multiplier of the quadratic threshold curve.
const XPBase = 50

// XPPerLogin is the experience granted for the first login of a day.
const XPPerLogin = 10

// XPPerEncounter is the experience granted for the first encounter with a
// given peer on a given day.
const XPPerEncounter = 5

// Progress describes where a cumulative XP total sits on the curve.
type Progress struct {
	// Level is the derived level, always >= 1.
	Level int `json:"level"`

	// XPIntoLevel is the XP accumulated past the start of Level.
	XPIntoLevel int `json:"xpIntoLevel"`

	// NextThreshold is the total XP within Level needed to reach Level+1.
	NextThreshold int `json:"nextThreshold"`
}

// Threshold returns the experience required to advance from level to level+1.
func Threshold(level int) int {
	return XPBase * level * level
}

// LevelFromXP derives the level and in-level remainder for a cumulative XP
// total. Defined for all totalXP >= 0; LevelFromXP(0) is level 1 with 50 XP
// to go.
func LevelFromXP(totalXP int) Progress {
	level := 1
	remaining := totalXP
	requirement := Threshold(level)

	for remaining >= requirement {
		remaining -= requirement
		level++
		requirement = Threshold(level)
	}

	return Progress{
		Level:         level,
		XPIntoLevel:   remaining,
		NextThreshold: requirement,
	}
}
