package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
)

// reactor rejects reactions from combatants that cannot act.
func reactor(op string, c *Combatant) (Result, bool) {
	switch {
	case c.IsDead():
		return fail(op, TerminalState, ReasonDead), false
	case !c.CanAct():
		return fail(op, InvalidOperation, ReasonIncapacitated), false
	}
	return Result{}, true
}

func (c *Core) logReaction(who *Combatant, t reaction.Type) {
	c.logger.Debug("reaction used", zap.String("combatant", who.ID), zap.String("reaction", string(t)))
}

// ShieldResult reports a shield reaction.
type ShieldResult struct {
	Result
	Shield reaction.ShieldResult
}

// UseShield raises caster's AC after the triggering attack total is known.
//
// Postcondition: On success one slot is spent, the reaction is consumed and
// the AC bonus lasts until caster's next turn start.
func (c *Core) UseShield(caster *Combatant, attackTotal int) ShieldResult {
	const op = "use_shield"
	if r, ok := reactor(op, caster); !ok {
		return ShieldResult{Result: r}
	}
	res, err := caster.Reactions.UseShield(caster.Slots, attackTotal, caster.EffectiveAC())
	if err != nil {
		return ShieldResult{Result: classify(op, err)}
	}
	c.logReaction(caster, reaction.Shield)
	return ShieldResult{Result: succeed(op, caster.Name+" "+res.Message), Shield: res}
}

// CounterspellResult reports a counterspell reaction.
type CounterspellResult struct {
	Result
	Counterspell reaction.CounterspellResult
}

// UseCounterspell tries to negate an effect of effectLevel.
func (c *Core) UseCounterspell(caster *Combatant, effectLevel int) CounterspellResult {
	const op = "use_counterspell"
	if r, ok := reactor(op, caster); !ok {
		return CounterspellResult{Result: r}
	}
	res, err := caster.Reactions.UseCounterspell(caster.Slots, effectLevel, caster.Template.SpellcastingModifier(), c.dice)
	if err != nil {
		return CounterspellResult{Result: classify(op, err)}
	}
	c.logReaction(caster, reaction.Counterspell)
	return CounterspellResult{Result: succeed(op, caster.Name+" "+res.Message), Counterspell: res}
}

// OpportunityResult reports an opportunity attack and any damage it dealt.
type OpportunityResult struct {
	Result
	Attack reaction.OpportunityResult
	Damage *DamageResult
}

// UseOpportunityAttack lets attacker strike target as it leaves reach and
// applies the damage. Only a melee weapon can make the attack.
func (c *Core) UseOpportunityAttack(attacker, target *Combatant) OpportunityResult {
	const op = "use_opportunity_attack"
	if r, ok := reactor(op, attacker); !ok {
		return OpportunityResult{Result: r}
	}
	if target.IsDead() {
		return OpportunityResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	if attacker.Weapon().Ranged {
		return OpportunityResult{Result: fail(op, NotEligible, ReasonNotMelee)}
	}
	p := attacker.attackProfile()
	p.Mode = c.AttackModifiers(attacker, target, true).Mode()
	p.AutoCrit = c.IsAutoCrit(target, true)
	res, err := attacker.Reactions.UseOpportunityAttack(p, target.EffectiveAC(), c.dice)
	if err != nil {
		return OpportunityResult{Result: classify(op, err)}
	}
	c.logReaction(attacker, reaction.OpportunityAttack)
	out := OpportunityResult{Result: succeed(op, attacker.Name+" "+res.Message), Attack: res}
	if res.Hit {
		attacker.LastTargetID = target.ID
		dmg := c.ApplyDamage(target, res.Damage, damage.Type(p.DamageType), res.Critical)
		out.Damage = &dmg
		out.Message += "; " + dmg.Message
	}
	return out
}

// UncannyDodgeResult reports halved damage.
type UncannyDodgeResult struct {
	Result
	UncannyDodge reaction.UncannyDodgeResult
}

// UseUncannyDodge halves incoming attack damage before it is applied.
func (c *Core) UseUncannyDodge(defender *Combatant, incoming int) UncannyDodgeResult {
	const op = "use_uncanny_dodge"
	if r, ok := reactor(op, defender); !ok {
		return UncannyDodgeResult{Result: r}
	}
	res, err := defender.Reactions.UseUncannyDodge(incoming)
	if err != nil {
		return UncannyDodgeResult{Result: classify(op, err)}
	}
	c.logReaction(defender, reaction.UncannyDodge)
	return UncannyDodgeResult{Result: succeed(op, defender.Name+" "+res.Message), UncannyDodge: res}
}

// ResetResult reports the AC modifiers that expired at turn start.
type ResetResult struct {
	Result
	Expired []reaction.ACModifier
}

// ResetReactions restores target's reaction and expires reaction-granted AC.
func (c *Core) ResetReactions(target *Combatant) ResetResult {
	expired := target.Reactions.Reset()
	msg := ""
	if len(expired) > 0 {
		msg = target.Name + "'s reaction bonuses expire"
	}
	return ResetResult{Result: succeed("reset_reactions", msg), Expired: expired}
}
