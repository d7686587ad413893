package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/position"
	"github.com/cory-johannsen/tactics/internal/game/sneakattack"
)

// SneakSetup is the attack context sneak attack depends on.
type SneakSetup struct {
	Advantage      bool
	Disadvantage   bool
	AllyNearTarget bool
	Critical       bool
}

func sneakAttack(attacker *Combatant, s SneakSetup) sneakattack.Attack {
	return sneakattack.Attack{
		Class:          attacker.Template.Class,
		Level:          attacker.Template.Level,
		Weapon:         attacker.Weapon(),
		Advantage:      s.Advantage,
		Disadvantage:   s.Disadvantage,
		AllyNearTarget: s.AllyNearTarget,
		Critical:       s.Critical,
	}
}

// SneakAttackResult reports a sneak attack check or application.
type SneakAttackResult struct {
	Result
	Check   sneakattack.Check
	Applied sneakattack.Result
}

// CheckSneakAttack evaluates eligibility without side effects.
func (c *Core) CheckSneakAttack(attacker *Combatant, s SneakSetup) SneakAttackResult {
	const op = "check_sneak_attack"
	chk := attacker.Sneak.Check(sneakAttack(attacker, s))
	if !chk.Eligible {
		return SneakAttackResult{Result: fail(op, NotEligible, chk.Reason), Check: chk}
	}
	return SneakAttackResult{Result: succeed(op, attacker.Name+" can sneak attack"), Check: chk}
}

// ApplySneakAttack rolls the bonus dice onto baseDamage when eligible.
//
// Postcondition: Applied.TotalDamage is baseDamage when not eligible.
func (c *Core) ApplySneakAttack(attacker *Combatant, s SneakSetup, baseDamage int) SneakAttackResult {
	const op = "apply_sneak_attack"
	res := attacker.Sneak.Apply(sneakAttack(attacker, s), baseDamage, c.dice)
	if !res.Applied {
		return SneakAttackResult{Result: fail(op, NotEligible, res.Reason), Check: sneakattack.Check{Reason: res.Reason}, Applied: res}
	}
	c.logger.Debug("sneak attack",
		zap.String("combatant", attacker.ID),
		zap.Int("bonus", res.SneakAttackDamage),
		zap.Int("total", res.TotalDamage),
	)
	return SneakAttackResult{
		Result:  succeed(op, attacker.Name+"'s "+res.Message),
		Check:   sneakattack.Check{Eligible: true, Reason: res.Reason},
		Applied: res,
	}
}

// ResetSneakAttack makes sneak attack available again.
func (c *Core) ResetSneakAttack(attacker *Combatant) Result {
	attacker.Sneak.Reset()
	return succeed("reset_sneak_attack", "")
}

// CommandResult acknowledges an issued command.
type CommandResult struct {
	Result
	Ack command.Ack
}

// IssueCommand records a command for an AI-controlled ally.
func (c *Core) IssueCommand(henchman *Combatant, name command.Name, opts command.Options) CommandResult {
	const op = "issue_command"
	if !henchman.IsHenchman() {
		return CommandResult{Result: fail(op, InvalidOperation, ReasonNotHenchman)}
	}
	if henchman.IsDead() {
		return CommandResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	ack, err := c.commands.Issue(henchman.Command, name, opts)
	if err != nil {
		return CommandResult{Result: classify(op, err)}
	}
	c.logger.Debug("command issued",
		zap.String("combatant", henchman.ID),
		zap.String("command", string(ack.Command)),
		zap.String("previous", string(ack.Previous)),
		zap.String("stance", string(ack.Stance)),
	)
	return CommandResult{Result: succeed(op, henchman.Name+" "+ack.Message), Ack: ack}
}

// IssueOrder parses a text order such as "attack goblin" or "hold" and
// issues it. The target and ability come from the order's argument.
func (c *Core) IssueOrder(henchman *Combatant, line string, holdAt position.Band) CommandResult {
	order, err := c.commands.ParseOrder(line)
	if err != nil {
		return CommandResult{Result: classify("issue_order", err)}
	}
	opts := order.Options
	if order.Command.Name == command.HoldPosition && opts.HoldAt == "" {
		opts.HoldAt = holdAt
	}
	return c.IssueCommand(henchman, order.Command.Name, opts)
}

// ClearTargetOverride drops henchman's designated target, as when it dies.
func (c *Core) ClearTargetOverride(henchman *Combatant) Result {
	const op = "clear_target_override"
	if !henchman.IsHenchman() {
		return fail(op, InvalidOperation, ReasonNotHenchman)
	}
	if !henchman.Command.ClearTargetOverride() {
		return fail(op, NotEligible, ReasonNoOverride)
	}
	return succeed(op, henchman.Name+" clears its target")
}

// BehaviorResult carries the AI's proposed turn.
type BehaviorResult struct {
	Result
	Behavior ai.Behavior
}

// ExecuteHenchmanTurn asks the AI for henchman's turn given snap. The
// behavior is a proposal; nothing is mutated.
func (c *Core) ExecuteHenchmanTurn(henchman *Combatant, snap *ai.Snapshot) BehaviorResult {
	const op = "execute_henchman_turn"
	switch {
	case !henchman.IsHenchman():
		return BehaviorResult{Result: fail(op, InvalidOperation, ReasonNotHenchman)}
	case henchman.IsDead():
		return BehaviorResult{Result: fail(op, TerminalState, ReasonDead)}
	}
	b, err := c.resolver.Resolve(henchman.Command, snap)
	if err != nil {
		c.logger.Warn("henchman resolve failed", zap.String("combatant", henchman.ID), zap.Error(err))
		return BehaviorResult{Result: fail(op, InvalidOperation, ReasonInternal)}
	}
	c.logger.Debug("henchman decision",
		zap.String("combatant", henchman.ID),
		zap.Stringer("behavior", b),
	)
	return BehaviorResult{Result: succeed(op, henchman.Name+" decides: "+b.Reasoning), Behavior: b}
}
