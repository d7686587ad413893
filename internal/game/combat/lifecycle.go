package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/deathsave"
)

// DeathSaveResult reports a death-save state transition.
type DeathSaveResult struct {
	Result
	Outcome deathsave.Outcome
}

func (c *Core) deathSave(op string, target *Combatant, out deathsave.Outcome, err error) DeathSaveResult {
	if err != nil {
		return DeathSaveResult{Result: classify(op, err)}
	}
	if out.State == deathsave.Revived {
		_, _ = target.Conditions.Remove(condition.Unconscious)
	}
	c.logger.Debug("death save",
		zap.String("combatant", target.ID),
		zap.String("op", op),
		zap.Stringer("state", out.State),
		zap.Int("roll", out.Roll),
		zap.Int("successes", out.Successes),
		zap.Int("failures", out.Failures),
	)
	return DeathSaveResult{Result: succeed(op, target.Name+" "+out.Message), Outcome: out}
}

// RollDeathSave rolls target's death saving throw.
//
// Precondition: NeedsDeathSave(target).
// Postcondition: A natural 20 leaves target at 1 hit point, conscious, with
// no record.
func (c *Core) RollDeathSave(target *Combatant) DeathSaveResult {
	out, err := target.Saves.Roll(&target.Vitals, c.dice)
	return c.deathSave("roll_death_save", target, out, err)
}

// DamageAtZeroHP records one failure, or two for a critical hit, against a
// target at 0 hit points.
func (c *Core) DamageAtZeroHP(target *Combatant, critical bool) DeathSaveResult {
	out, err := target.Saves.DamageAtZero(&target.Vitals, critical)
	return c.deathSave("damage_at_zero_hp", target, out, err)
}

// HealFromZeroHP restores amount hit points to a dying or stable target and
// destroys its record.
func (c *Core) HealFromZeroHP(target *Combatant, amount int) DeathSaveResult {
	const op = "heal_from_zero_hp"
	if !target.IsDead() && !target.Vitals.AtZero() {
		return DeathSaveResult{Result: fail(op, NotEligible, ReasonNotDying)}
	}
	if amount <= 0 {
		return DeathSaveResult{Result: fail(op, InvalidOperation, ReasonInvalidAmount)}
	}
	out, err := target.Saves.HealFromZero(&target.Vitals, amount)
	return c.deathSave(op, target, out, err)
}

// Stabilize marks a dying target stable without a roll.
func (c *Core) Stabilize(target *Combatant) DeathSaveResult {
	out, err := target.Saves.Stabilize(&target.Vitals)
	return c.deathSave("stabilize", target, out, err)
}

// NeedsDeathSave reports whether target must roll at the start of its turn.
func (c *Core) NeedsDeathSave(target *Combatant) bool {
	return target.Saves.NeedsSave(&target.Vitals)
}

// HealResult reports healing.
type HealResult struct {
	Result
	Restored int
	Revived  bool
}

// Heal restores up to amount hit points. Healing a target at 0 hit points
// revives it.
func (c *Core) Heal(target *Combatant, amount int) HealResult {
	const op = "heal"
	if target.IsDead() {
		return HealResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	if amount <= 0 {
		return HealResult{Result: fail(op, InvalidOperation, ReasonInvalidAmount)}
	}
	if target.Vitals.AtZero() {
		ds := c.HealFromZeroHP(target, amount)
		if !ds.Success {
			return HealResult{Result: ds.Result}
		}
		return HealResult{Result: ds.Result, Restored: target.Vitals.HP, Revived: true}
	}
	restored := damage.Heal(&target.Vitals, amount)
	return HealResult{
		Result:   succeed(op, fmt.Sprintf("%s regains %d hit points (%d/%d)", target.Name, restored, target.Vitals.HP, target.Vitals.MaxHP)),
		Restored: restored,
	}
}
