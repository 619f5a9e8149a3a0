package presence

import (
	"plaza/internal/app/progression"
	"plaza/internal/app/user"
)

// demoSeed describes one pre-populated visitor for demo deployments.
type demoSeed struct {
	id      string
	name    string
	avatar  user.Avatar
	message string
	xp      int
}

var demoSeeds = []demoSeed{
	{id: "demo-1", name: "Akira", avatar: user.AvatarHuman, message: "Let's make today count!", xp: 30},
	{id: "demo-2", name: "Mike", avatar: user.AvatarCat, message: "meow", xp: 120},
	{id: "demo-3", name: "Robos", avatar: user.AvatarRobot, message: "0110 good morning", xp: 260},
}

// SeedDemoUsers populates a few visitors already present today so a fresh
// deployment has someone to encounter. No-op unless the store is empty.
func (reg *Registry) SeedDemoUsers(today string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.records) > 0 {
		return
	}

	for _, seed := range demoSeeds {
		rec := &record{
			id:         seed.id,
			name:       seed.name,
			avatar:     seed.avatar,
			message:    seed.message,
			xp:         seed.xp,
			level:      progression.LevelFromXP(seed.xp).Level,
			lastLogin:  today,
			encounters: make(map[string]string),
		}
		reg.records[seed.id] = rec
		reg.order = append(reg.order, seed.id)
	}

	reg.logger.Info().Int("count", len(demoSeeds)).Str("day", today).Msg("Demo users seeded.")
}
