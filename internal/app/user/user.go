/*
Package user contains the externally visible user representation and the avatar catalog.

It defines the Snapshot struct, the projection of a plaza user shared with
clients and other components. The per-peer encounter ledger never leaves the
presence package; Snapshot is the only shape that crosses boundaries.
*/
package user

// Avatar identifies one of the fixed sprite variants a user can appear as.
type Avatar string

const (
	AvatarHuman  Avatar = "human"
	AvatarCat    Avatar = "cat"
	AvatarRobot  Avatar = "robot"
	AvatarWizard Avatar = "wizard"
	AvatarDragon Avatar = "dragon"
	AvatarBug    Avatar = "bug"
)

// AvatarOption pairs an avatar variant with the level at which it unlocks.
type AvatarOption struct {
	ID          Avatar `json:"id"`
	Label       string `json:"label"`
	UnlockLevel int    `json:"unlockLevel"`
}

// AvatarOptions is the full avatar catalog in display order. Nothing unlocks
// past level 10 even though levels keep growing.
var AvatarOptions = []AvatarOption{
	{ID: AvatarHuman, Label: "Human", UnlockLevel: 1},
	{ID: AvatarCat, Label: "Cat", UnlockLevel: 2},
	{ID: AvatarRobot, Label: "Robot", UnlockLevel: 3},
	{ID: AvatarWizard, Label: "Wizard", UnlockLevel: 5},
	{ID: AvatarDragon, Label: "Dragon", UnlockLevel: 10},
	{ID: AvatarBug, Label: "Bug", UnlockLevel: 10},
}

// Snapshot is the public projection of a plaza user.
// Fields use JSON tags for serialization in API and WebSocket messages.
type Snapshot struct {

	// ID is the stable, externally supplied identifier for the user.
	ID string `json:"userId"`

	// Name is the display name shown next to the avatar.
	Name string `json:"name"`

	// Avatar is the sprite variant the user appears as.
	Avatar Avatar `json:"avatarType"`

	// Message is the user's status message.
	Message string `json:"message"`

	// Level is the cached level derived from XP.
	Level int `json:"level"`

	// XP is the cumulative experience total.
	XP int `json:"xp"`
}

// IsValidAvatar reports whether the given variant exists in the catalog.
func IsValidAvatar(a Avatar) bool {
	for _, option := range AvatarOptions {
		if option.ID == a {
			return true
		}
	}
	return false
}

// Unlocked returns the avatar variants available at the given level, in
// catalog order.
func Unlocked(level int) []Avatar {
	unlocked := make([]Avatar, 0, len(AvatarOptions))
	for _, option := range AvatarOptions {
		if option.UnlockLevel <= level {
			unlocked = append(unlocked, option.ID)
		}
	}
	return unlocked
}
