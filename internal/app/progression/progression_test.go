package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdCurve(t *testing.T) {
	assert.Equal(t, 50, Threshold(1))
	assert.Equal(t, 200, Threshold(2))
	assert.Equal(t, 450, Threshold(3))
	assert.Equal(t, 5000, Threshold(10))
	assert.Equal(t, 50*37*37, Threshold(37))
}

func TestLevelFromXPZero(t *testing.T) {
	p := LevelFromXP(0)

	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.XPIntoLevel)
	assert.Equal(t, 50, p.NextThreshold)
}

func TestLevelFromXPBoundaries(t *testing.T) {
	// 49 XP is still level 1; 50 flips to level 2 with nothing into it.
	p := LevelFromXP(49)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 49, p.XPIntoLevel)

	p = LevelFromXP(50)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 0, p.XPIntoLevel)
	assert.Equal(t, 200, p.NextThreshold)

	// 50 + 200 = 250 reaches level 3.
	p = LevelFromXP(249)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 199, p.XPIntoLevel)

	p = LevelFromXP(250)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 0, p.XPIntoLevel)
	assert.Equal(t, 450, p.NextThreshold)
}

func TestLevelFromXPReconstruction(t *testing.T) {
	// The derived (level, remainder) must reconstruct the input exactly, and
	// the remainder must sit strictly below the next threshold.
	for xp := 0; xp <= 20000; xp += 7 {
		p := LevelFromXP(xp)

		require.GreaterOrEqual(t, p.Level, 1, "xp=%d", xp)
		require.GreaterOrEqual(t, p.XPIntoLevel, 0, "xp=%d", xp)
		require.Less(t, p.XPIntoLevel, p.NextThreshold, "xp=%d", xp)
		require.Equal(t, Threshold(p.Level), p.NextThreshold, "xp=%d", xp)

		sum := 0
		for level := 1; level < p.Level; level++ {
			sum += Threshold(level)
		}
		require.Equal(t, xp, sum+p.XPIntoLevel, "xp=%d", xp)
	}
}

func TestLevelFromXPDeterministic(t *testing.T) {
	assert.Equal(t, LevelFromXP(1234), LevelFromXP(1234))
}
