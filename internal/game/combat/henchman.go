package combat

import (
	"context"

	"github.com/cory-johannsen/tactics/internal/game/ai"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

// HenchmanTurn reports what an AI-controlled ally did on its turn.
type HenchmanTurn struct {
	Result
	Behavior ai.Behavior
	Move     *MoveResult
	Attack   *AttackResult
	Heal     *HealResult
	Ability  *Result
}

// TakeHenchmanTurn asks the AI for the active henchman's turn and applies
// it through the same paths a player would use. An action the battlefield
// no longer allows falls back to dodging.
func (e *Encounter) TakeHenchmanTurn(ctx context.Context, id string) HenchmanTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "henchman_turn"
	h, r, ok := e.action(op, id)
	if !ok {
		return HenchmanTurn{Result: r}
	}
	if !h.IsHenchman() {
		return HenchmanTurn{Result: fail(op, InvalidOperation, ReasonNotHenchman)}
	}

	e.refreshInfos()
	decision := e.core.ExecuteHenchmanTurn(h, e.snapshot(h))
	if !decision.Success {
		return HenchmanTurn{Result: decision.Result}
	}
	b := decision.Behavior
	out := HenchmanTurn{Behavior: b}
	e.narrate(ctx, h.ID, "decision", decision.Message)

	if b.Action == ai.ActionDisengage {
		e.disengd, e.acted = true, true
		e.narrate(ctx, h.ID, "disengage", h.Name+" disengages")
	}
	if dest, ok := e.destination(h, b); ok {
		mv := e.move(ctx, h, dest)
		out.Move = &mv
		if h.IsDown() {
			out.Result = succeed(op, h.Name+" falls while moving")
			return out
		}
	}

	switch b.Action {
	case ai.ActionAttack:
		atk := e.attack(ctx, h, b.TargetID)
		if atk.Success {
			out.Attack = &atk
			break
		}
		e.dodge(ctx, h)
	case ai.ActionHeal:
		hl := e.heal(ctx, h, b.TargetID)
		if hl.Success {
			out.Heal = &hl
			break
		}
		e.dodge(ctx, h)
	case ai.ActionUseAbility:
		ab := e.useAbility(ctx, h, b.Ability)
		if ab.Success {
			out.Ability = &ab
			break
		}
		e.dodge(ctx, h)
	case ai.ActionDefend:
		e.dodge(ctx, h)
	}
	out.Result = succeed(op, h.Name+": "+b.String())
	return out
}

// snapshot builds the read-only battlefield view for h.
func (e *Encounter) snapshot(h *Combatant) *ai.Snapshot {
	snap := &ai.Snapshot{Round: e.round, Self: e.actorView(h)}
	snap.Player = snap.Self
	if p, ok := e.byID[h.Protects]; ok {
		snap.Player = e.actorView(p)
	}
	for _, o := range e.order {
		if o.ID == h.ID || o.ID == h.Protects || o.IsDead() {
			continue
		}
		if o.Side.Opposes(h.Side) {
			snap.Enemies = append(snap.Enemies, e.actorView(o))
		} else {
			snap.Allies = append(snap.Allies, e.actorView(o))
		}
	}
	return snap
}

func (e *Encounter) actorView(c *Combatant) *ai.Actor {
	a := &ai.Actor{
		ID:           c.ID,
		Name:         c.Name,
		HP:           c.Vitals.HP,
		MaxHP:        c.Vitals.MaxHP,
		AC:           c.EffectiveAC(),
		Band:         e.positions.Band(c.ID),
		Dead:         c.IsDown(),
		Threat:       c.Threat(),
		LastTargetID: c.LastTargetID,
		CanHeal:      e.healSpell(c) != "",
		CanAct:       c.CanAct(),
	}
	for _, ab := range c.Template.Specials {
		if !e.spent[c.ID][ab] {
			a.Abilities = append(a.Abilities, ab)
		}
	}
	return a
}

// destination maps a movement intent onto a band. The bool is false when
// the henchman should stay put.
func (e *Encounter) destination(h *Combatant, b ai.Behavior) (position.Band, bool) {
	here := e.positions.Band(h.ID)
	var dest position.Band
	switch b.Movement {
	case ai.MoveAdvance:
		t, ok := e.byID[b.TargetID]
		if !ok {
			return "", false
		}
		dest = stepToward(here, e.positions.Band(t.ID))
	case ai.MoveFlank:
		t, ok := e.byID[b.TargetID]
		if !ok {
			return "", false
		}
		dest = e.positions.Band(t.ID)
	case ai.MoveStayNear, ai.MoveFollow:
		dest = e.positions.Band(h.Protects)
		if _, ok := e.byID[h.Protects]; !ok {
			return "", false
		}
	case ai.MoveRetreat:
		dest = here.Farther()
	case ai.MoveReturn:
		if b.Destination == "" {
			return "", false
		}
		dest = b.Destination
	case ai.MoveKeepDistance:
		if here != position.Melee {
			return "", false
		}
		dest = position.Near
	default:
		return "", false
	}
	return dest, dest != here && e.core.CanMove(h)
}

// stepToward moves one band from here toward there.
func stepToward(here, there position.Band) position.Band {
	switch {
	case here.Rank() > there.Rank():
		return here.Closer()
	case here.Rank() < there.Rank():
		return here.Farther()
	default:
		return here
	}
}
