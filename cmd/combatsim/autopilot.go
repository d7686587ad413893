package main

import (
	"context"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

// autoTurn plays a combatant that no one is commanding: heal a badly hurt
// ally if it can, otherwise close to melee (melee weapons) and strike the
// weakest reachable enemy, dodging when nothing is in reach.
func autoTurn(ctx context.Context, enc *combat.Encounter, pos *position.Tracker, c *combat.Combatant) {
	if c.Vitals.HP*2 < c.Vitals.MaxHP && c.Template.HasAbility(combat.AbilitySecondWind) {
		if enc.UseAbility(ctx, c.ID, combat.AbilitySecondWind).Success {
			return
		}
	}
	if ally := hurtAlly(enc, c); ally != nil {
		if enc.Heal(ctx, c.ID, ally.ID).Success {
			return
		}
	}

	ranged := c.Weapon().Ranged
	if !ranged && pos.Band(c.ID) != position.Melee {
		enc.Move(ctx, c.ID, position.Melee)
	}
	target := weakestEnemy(enc, pos, c, ranged)
	if target == nil {
		enc.Dodge(ctx, c.ID)
		return
	}
	if res := enc.ResolveAttack(ctx, c.ID, target.ID); !res.Success {
		enc.Dodge(ctx, c.ID)
	}
}

// hurtAlly returns the lowest ally below half hit points, preferring allies
// who are down.
func hurtAlly(enc *combat.Encounter, c *combat.Combatant) *combat.Combatant {
	var best *combat.Combatant
	for _, o := range enc.InitiativeOrder() {
		if o.Side != c.Side || o.IsDead() || o.Vitals.HP*2 >= o.Vitals.MaxHP {
			continue
		}
		if best == nil || o.Vitals.HP < best.Vitals.HP {
			best = o
		}
	}
	return best
}

// weakestEnemy picks the living enemy with the fewest hit points that c can
// reach, preferring enemies still standing.
func weakestEnemy(enc *combat.Encounter, pos *position.Tracker, c *combat.Combatant, ranged bool) *combat.Combatant {
	var best *combat.Combatant
	better := func(o *combat.Combatant) bool {
		switch {
		case best == nil:
			return true
		case o.Standing() != best.Standing():
			return o.Standing()
		default:
			return o.Vitals.HP < best.Vitals.HP
		}
	}
	for _, o := range enc.InitiativeOrder() {
		if !o.Side.Opposes(c.Side) || o.IsDead() {
			continue
		}
		if !ranged && (pos.Band(c.ID) != position.Melee || pos.Band(o.ID) != position.Melee) {
			continue
		}
		if better(o) {
			best = o
		}
	}
	return best
}
