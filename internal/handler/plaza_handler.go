/*
Package handler provides the HTTP handlers and routing setup for the plaza server.

This file holds the REST handlers for logging in to the plaza, reporting an
encounter, and reading today's roster.
*/
package handler

import (
	"net/http"

	"plaza/internal/app/presence"
	"plaza/internal/app/progression"
	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
	"plaza/internal/pkg/randx"
	"plaza/internal/pkg/req"
	"plaza/internal/pkg/resp"
)

// MaxMessageLength caps the status message, in bytes.
const MaxMessageLength = 200

// MaxNameLength caps the display name, in bytes.
const MaxNameLength = 50

type LoginInput struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Avatar  string `json:"avatarType"`
	Message string `json:"message"`
}

// validateProfile checks the caller-supplied profile fields shared by login.
func validateProfile(input *LoginInput) *errs.CustomError {
	if !randx.IsValidUserID(input.UserID) {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if input.Name == "" || len(input.Name) > MaxNameLength {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if !user.IsValidAvatar(user.Avatar(input.Avatar)) {
		return errs.NewError(errs.ErrAvatarInvalid)
	}

	if len(input.Message) > MaxMessageLength {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	return nil
}

// HandleLogin records a plaza check-in. The first login of a day grants the
// login bonus; repeats only refresh the profile. The resulting snapshot is
// published to the login broadcaster after the registry mutation completes.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := validateProfile(&input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		today := deps.Today()

		result := deps.Registry.RecordLogin(input.UserID, presence.Profile{
			Name:    input.Name,
			Avatar:  user.Avatar(input.Avatar),
			Message: input.Message,
		}, today)

		// Every successful login is announced, including deduped repeats:
		// watchers want the refreshed profile either way.
		deps.Broadcaster.Publish(result.Snapshot)

		progress := progression.LevelFromXP(result.Snapshot.XP)

		resp.RespondSuccess(w, r, map[string]any{
			"user":            result.Snapshot,
			"users":           result.Roster,
			"xp":              result.Snapshot.XP,
			"level":           result.Snapshot.Level,
			"xpGained":        result.XPGained,
			"leveledUp":       result.LeveledUp,
			"progress":        progress,
			"unlockedAvatars": user.Unlocked(result.Snapshot.Level),
		})
	}
}

type EncounterInput struct {
	UserID      string `json:"userId"`
	OtherUserID string `json:"otherUserId"`
}

// HandleEncounter grants the one-sided encounter reward: only the reporting
// user's record is touched.
func HandleEncounter(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input EncounterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !randx.IsValidUserID(input.UserID) || !randx.IsValidUserID(input.OtherUserID) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		result, customErr := deps.Registry.RegisterEncounter(input.UserID, input.OtherUserID, deps.Today())
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":      result.Snapshot,
			"xp":        result.Snapshot.XP,
			"level":     result.Snapshot.Level,
			"xpGained":  result.XPGained,
			"leveledUp": result.LeveledUp,
			"progress":  progression.LevelFromXP(result.Snapshot.XP),
		})
	}
}

// HandleRoster returns everyone whose last login matches today.
func HandleRoster(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster := deps.Registry.RosterToday(deps.Today())

		resp.RespondSuccess(w, r, map[string]any{
			"users": roster,
		})
	}
}
