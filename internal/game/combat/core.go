package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/deathsave"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// ReasonDefenderDodging is reported when the defender took the dodge action.
const ReasonDefenderDodging = "defender_dodging"

// Core exposes every rules operation to a turn controller. Operations
// return result structs and never panic on a rules failure.
//
// Core holds no combatant state; combatants own their records. It is not
// safe to mutate one combatant from two goroutines.
type Core struct {
	rules    Rules
	dice     dice.Dicer
	registry *condition.Registry
	commands *command.Registry
	resolver *ai.Resolver
	logger   *zap.Logger
}

// NewCore wires the rules components.
//
// Precondition: d, reg, cmds, resolver and logger must not be nil.
func NewCore(rules Rules, d dice.Dicer, reg *condition.Registry, cmds *command.Registry, resolver *ai.Resolver, logger *zap.Logger) *Core {
	if d == nil || reg == nil || cmds == nil || resolver == nil || logger == nil {
		panic("combat.NewCore: dependencies must not be nil")
	}
	return &Core{rules: rules, dice: d, registry: reg, commands: cmds, resolver: resolver, logger: logger}
}

// Rules returns the configured rules.
func (c *Core) Rules() Rules { return c.rules }

// Registry returns the condition registry combatants are built with.
func (c *Core) Registry() *condition.Registry { return c.registry }

// Commands returns the command registry.
func (c *Core) Commands() *command.Registry { return c.commands }

// Dice returns the injected roller.
func (c *Core) Dice() dice.Dicer { return c.dice }

// ConditionResult reports an apply or remove.
type ConditionResult struct {
	Result
	Condition *condition.Condition
}

// ApplyCondition adds a condition of typ to target.
//
// Postcondition: On success target has typ and its effect flags are set.
// An existing condition of the same type fails with NotEligible.
func (c *Core) ApplyCondition(target *Combatant, typ condition.Type, duration int, source string, round int) ConditionResult {
	const op = "apply_condition"
	if target.IsDead() {
		return ConditionResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	cond, err := target.Conditions.Apply(typ, duration, source, round)
	if err != nil {
		return ConditionResult{Result: classify(op, err)}
	}
	c.logger.Debug("condition applied",
		zap.String("combatant", target.ID),
		zap.String("condition", string(typ)),
		zap.Int("duration", duration),
		zap.String("source", source),
	)
	return ConditionResult{Result: succeed(op, fmt.Sprintf("%s is %s", target.Name, typ)), Condition: cond}
}

// RemoveCondition removes typ from target and reverses its effects.
func (c *Core) RemoveCondition(target *Combatant, typ condition.Type) ConditionResult {
	const op = "remove_condition"
	cond, err := target.Conditions.Remove(typ)
	if err != nil {
		return ConditionResult{Result: classify(op, err)}
	}
	c.logger.Debug("condition removed",
		zap.String("combatant", target.ID),
		zap.String("condition", string(typ)),
	)
	return ConditionResult{Result: succeed(op, fmt.Sprintf("%s is no longer %s", target.Name, typ)), Condition: cond}
}

// HasCondition reports whether target has typ.
func (c *Core) HasCondition(target *Combatant, typ condition.Type) bool {
	return target.Conditions.Has(typ)
}

// Conditions lists target's conditions sorted by type.
func (c *Core) Conditions(target *Combatant) []*condition.Condition {
	return target.Conditions.All()
}

// TickResult reports the conditions that ended.
type TickResult struct {
	Result
	Expired []*condition.Condition
}

// TickConditions decrements every timed condition on target and removes the
// ones that run out.
func (c *Core) TickConditions(target *Combatant) TickResult {
	expired := target.Conditions.Tick()
	for _, e := range expired {
		c.logger.Debug("condition expired",
			zap.String("combatant", target.ID),
			zap.String("condition", string(e.Type)),
		)
	}
	return TickResult{Result: succeed("tick_conditions", expiredMessage(target, expired)), Expired: expired}
}

// ClearAllConditions removes every condition from target, reversing all
// effects.
func (c *Core) ClearAllConditions(target *Combatant) TickResult {
	cleared := target.Conditions.ClearAll()
	return TickResult{Result: succeed("clear_conditions", expiredMessage(target, cleared)), Expired: cleared}
}

func expiredMessage(target *Combatant, expired []*condition.Condition) string {
	if len(expired) == 0 {
		return ""
	}
	msg := target.Name + " is no longer"
	for i, e := range expired {
		if i > 0 {
			msg += ","
		}
		msg += " " + string(e.Type)
	}
	return msg
}

// AttackModifiers derives advantage and disadvantage for attacker against
// defender from both condition sets and the defender's dodge.
func (c *Core) AttackModifiers(attacker, defender *Combatant, melee bool) condition.Modifiers {
	m := condition.AttackModifiers(condition.Attack{
		Attacker:   attacker.Conditions,
		AttackerID: attacker.ID,
		Defender:   defender.Conditions,
		DefenderID: defender.ID,
		Melee:      melee,
	})
	if defender.Dodging && defender.CanAct() {
		m.Disadvantage = true
		m.Reasons = append(m.Reasons, ReasonDefenderDodging)
	}
	return m
}

// IsAutoCrit reports whether a hit on defender is automatically critical.
func (c *Core) IsAutoCrit(defender *Combatant, melee bool) bool {
	return condition.IsAutoCrit(defender.Conditions, melee)
}

// CanAct reports whether target may take its turn.
func (c *Core) CanAct(target *Combatant) bool { return target.CanAct() }

// CanMove reports whether target may move.
func (c *Core) CanMove(target *Combatant) bool { return target.EffectiveSpeed() > 0 }

// DamageResult reports a damage application and its lifecycle consequences.
type DamageResult struct {
	Result
	Breakdown damage.Breakdown
	// Downed is true when this damage dropped the target to 0 hit points.
	Downed bool
	// Killed is true when this damage killed the target.
	Killed    bool
	DeathSave *deathsave.Outcome
}

// ApplyDamage resolves amount of type t against target. A target already at
// 0 hit points records death-save failures instead; a hostile dropping to 0
// dies; a party member dropping to 0 falls unconscious and starts death
// saves, unless massive damage kills them outright.
//
// Precondition: amount >= 0.
func (c *Core) ApplyDamage(target *Combatant, amount int, t damage.Type, critical bool) DamageResult {
	const op = "apply_damage"
	if target.IsDead() {
		return DamageResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	if amount < 0 {
		return DamageResult{Result: fail(op, InvalidOperation, ReasonInvalidAmount)}
	}
	wasZero := target.Vitals.AtZero()
	b := damage.Apply(&target.Vitals, target.Affinities, amount, t)
	res := DamageResult{Result: succeed(op, target.Name+" "+b.Message()), Breakdown: b}
	c.logger.Debug("damage applied",
		zap.String("combatant", target.ID),
		zap.String("type", string(t)),
		zap.Int("original", b.Original),
		zap.Int("final", b.Final),
		zap.Int("temp_absorbed", b.TempHPAbsorbed),
		zap.Int("hp", target.Vitals.HP),
	)
	if b.Final == 0 {
		return res
	}

	switch {
	case wasZero:
		if c.rules.MassiveDamage && b.Final >= target.Vitals.MaxHP {
			c.kill(target, &res, "is slain by massive damage")
			return res
		}
		out, err := target.Saves.DamageAtZero(&target.Vitals, critical)
		if err != nil {
			c.down(target, &res)
			return res
		}
		res.DeathSave = &out
		res.Message += "; " + target.Name + " " + out.Message
		if out.State == deathsave.Dead {
			res.Killed = true
		}
	case target.Vitals.AtZero():
		res.Downed = true
		switch {
		case target.Side == SideHostile:
			c.kill(target, &res, "dies")
		case c.rules.MassiveDamage && b.Overflow >= target.Vitals.MaxHP:
			c.kill(target, &res, "is slain by massive damage")
		default:
			c.down(target, &res)
		}
	}
	return res
}

func (c *Core) kill(target *Combatant, res *DamageResult, why string) {
	out := target.Saves.Kill(&target.Vitals)
	res.Killed = true
	res.DeathSave = &out
	res.Message += "; " + target.Name + " " + why
	c.logger.Debug("combatant killed", zap.String("combatant", target.ID), zap.String("cause", why))
}

// down starts death saves and knocks the target unconscious.
func (c *Core) down(target *Combatant, res *DamageResult) {
	target.Saves.Init(&target.Vitals)
	_, _ = target.Conditions.Apply(condition.Unconscious, condition.Permanent, "zero_hp", 0)
	_, _ = target.Conditions.Apply(condition.Prone, condition.Permanent, "zero_hp", 0)
	res.Message += "; " + target.Name + " falls unconscious"
	c.logger.Debug("combatant down", zap.String("combatant", target.ID))
}

// TempHPResult reports a temporary hit point grant.
type TempHPResult struct {
	Result
	Granted bool
	TempHP  int
}

// GrantTempHP replaces target's temporary hit points only when amount is
// strictly greater.
func (c *Core) GrantTempHP(target *Combatant, amount int) TempHPResult {
	const op = "grant_temp_hp"
	if target.IsDead() {
		return TempHPResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	granted := damage.GrantTempHP(&target.Vitals, amount)
	msg := fmt.Sprintf("%s keeps %d temporary hit points", target.Name, target.Vitals.TempHP)
	if granted {
		msg = fmt.Sprintf("%s gains %d temporary hit points", target.Name, target.Vitals.TempHP)
	}
	return TempHPResult{Result: succeed(op, msg), Granted: granted, TempHP: target.Vitals.TempHP}
}

// AffinityResult reports a change to a damage modifier set. Changed is false
// when the set already matched.
type AffinityResult struct {
	Result
	Changed bool
}

// AddResistance adds t to target's resistances.
func (c *Core) AddResistance(target *Combatant, t damage.Type) AffinityResult {
	return c.addAffinity(target, damage.Resistance, t)
}

// AddImmunity adds t to target's immunities.
func (c *Core) AddImmunity(target *Combatant, t damage.Type) AffinityResult {
	return c.addAffinity(target, damage.Immunity, t)
}

// AddVulnerability adds t to target's vulnerabilities.
func (c *Core) AddVulnerability(target *Combatant, t damage.Type) AffinityResult {
	return c.addAffinity(target, damage.Vulnerability, t)
}

func (c *Core) addAffinity(target *Combatant, kind damage.Kind, t damage.Type) AffinityResult {
	added := target.Affinities.Add(kind, t)
	return AffinityResult{
		Result:  succeed("add_"+kind.String(), fmt.Sprintf("%s %s %s: added:%t", target.Name, kind, t, added)),
		Changed: added,
	}
}

// RemoveDamageModifier removes t from one of target's sets. Removing a
// non-member succeeds with Changed false.
func (c *Core) RemoveDamageModifier(target *Combatant, kind damage.Kind, t damage.Type) AffinityResult {
	removed := target.Affinities.Remove(kind, t)
	return AffinityResult{
		Result:  succeed("remove_damage_modifier", fmt.Sprintf("%s %s %s: removed:%t", target.Name, kind, t, removed)),
		Changed: removed,
	}
}
