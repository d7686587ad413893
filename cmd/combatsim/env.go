package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
	"github.com/cory-johannsen/tactics/internal/observability"
	"github.com/cory-johannsen/tactics/internal/scripting"
	"github.com/cory-johannsen/tactics/internal/storage/postgres"
)

// henchmanScope is the Lua scope holding henchman ability gates.
const henchmanScope = "henchmen"

// env holds everything shared by the encounters of one invocation.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	catalog  *character.Catalog
	registry *condition.Registry
	profiles *ai.Profiles
	commands *command.Registry

	pool      *postgres.Pool
	combatLog *postgres.CombatLogRepository
}

// newEnv loads configuration and content.
//
// Postcondition: Returns a ready env or an error; callers must Close it.
func newEnv(ctx context.Context, path string) (*env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, commands: command.DefaultRegistry()}

	if e.catalog, err = character.LoadDirectory(cfg.Content.TemplatesDir); err != nil {
		return nil, err
	}
	e.registry = condition.DefaultRegistry()
	if dir := cfg.Content.ConditionsDir; dir != "" {
		if e.registry, err = condition.LoadDirectory(dir); err != nil {
			return nil, err
		}
	}
	e.profiles = ai.DefaultProfiles()
	if dir := cfg.Content.ProfilesDir; dir != "" {
		if e.profiles, err = ai.LoadProfiles(dir); err != nil {
			return nil, err
		}
	}

	if cfg.CombatLog.Enabled {
		if e.pool, err = postgres.NewPool(ctx, cfg.Database, logger); err != nil {
			return nil, fmt.Errorf("combat log: %w", err)
		}
		e.combatLog = postgres.NewCombatLogRepository(e.pool)
	}

	logger.Debug("content loaded",
		zap.Strings("templates", e.catalog.IDs()),
		zap.Int("conditions", len(e.registry.All())),
		zap.Int("profiles", e.profiles.Len()),
		zap.Bool("combat_log", cfg.CombatLog.Enabled))
	return e, nil
}

// Close releases the database pool and flushes the logger.
func (e *env) Close() {
	if e.pool != nil {
		e.pool.Close()
	}
	_ = e.logger.Sync()
}

// rules maps the rules section onto the combat core's rules.
func (e *env) rules() combat.Rules {
	r := e.cfg.Rules
	return combat.Rules{
		DeathSaveDC: r.DeathSaveDC,
		Reactions: reaction.Rules{
			ShieldACBonus:         r.ShieldACBonus,
			CounterspellSlotLevel: r.CounterspellSlotLevel,
			UncannyDodgeLevel:     r.UncannyDodgeLevel,
		},
		MassiveDamage: r.MassiveDamage,
		ActionTimeout: r.ActionTimeout,
	}
}

// narrator combines out with the combat log when it is enabled.
func (e *env) narrator(out combat.Narrator) combat.Narrator {
	var ns combat.MultiNarrator
	if out != nil {
		ns = append(ns, out)
	}
	if e.combatLog != nil {
		ns = append(ns, e.combatLog)
	}
	if len(ns) == 0 {
		return nil
	}
	return ns
}

// session is one engine with its own dice and script VM.
type session struct {
	engine  *combat.Engine
	scripts *scripting.Manager
}

// newSession builds an engine whose dice are seeded with seed (0 selects
// cryptographic randomness).
func (e *env) newSession(seed uint64, out combat.Narrator) (*session, error) {
	src := dice.NewCryptoSource()
	if seed != 0 {
		src = dice.NewSeededSource(seed)
	}
	roller := dice.NewLoggedRoller(src, e.logger)

	scripts := scripting.NewManager(roller, e.logger)
	var caller ai.ScriptCaller
	if dir := e.cfg.Content.ScriptsDir; dir != "" {
		if err := scripts.LoadScope(henchmanScope, dir, scripting.DefaultInstructionLimit); err != nil {
			scripts.Close()
			return nil, err
		}
		caller = scripts
	}

	resolver := ai.NewResolver(e.profiles, caller, henchmanScope, e.logger)
	core := combat.NewCore(e.rules(), roller, e.registry, e.commands, resolver, e.logger)
	engine := combat.NewEngine(core, e.narrator(out), e.logger)
	scripts.GetCombatant = engine.CombatantInfo
	return &session{engine: engine, scripts: scripts}, nil
}

// Close shuts the script VMs.
func (s *session) Close() { s.scripts.Close() }
