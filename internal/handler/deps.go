package handler

import (
	"plaza/internal/app/plaza"
	"plaza/internal/app/presence"
	"plaza/internal/configs"
)

// AppDeps bundles the collaborators every handler needs.
type AppDeps struct {
	Registry    *presence.Registry
	Broadcaster *presence.Broadcaster
	Manager     *plaza.Manager
	Config      *configs.AppConfig

	// Today supplies the process-wide day key used for all dedupe decisions.
	Today presence.DayFunc
}
