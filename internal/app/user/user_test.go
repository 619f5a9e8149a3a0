package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAvatar(t *testing.T) {
	for _, option := range AvatarOptions {
		assert.True(t, IsValidAvatar(option.ID))
	}

	assert.False(t, IsValidAvatar("unicorn"))
	assert.False(t, IsValidAvatar(""))
}

func TestUnlocked(t *testing.T) {
	assert.Equal(t, []Avatar{AvatarHuman}, Unlocked(1))
	assert.Equal(t, []Avatar{AvatarHuman, AvatarCat}, Unlocked(2))
	assert.Equal(t, []Avatar{AvatarHuman, AvatarCat, AvatarRobot}, Unlocked(4))
	assert.Equal(t, []Avatar{AvatarHuman, AvatarCat, AvatarRobot, AvatarWizard}, Unlocked(5))

	// Everything is open at level 10; higher levels add nothing further.
	all := []Avatar{AvatarHuman, AvatarCat, AvatarRobot, AvatarWizard, AvatarDragon, AvatarBug}
	assert.Equal(t, all, Unlocked(10))
	assert.Equal(t, all, Unlocked(99))
}

func TestUnlockedBelowMinimum(t *testing.T) {
	assert.Empty(t, Unlocked(0))
}
