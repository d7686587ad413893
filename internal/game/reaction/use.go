package reaction

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// ShieldResult reports the effect of casting shield.
type ShieldResult struct {
	SlotLevel   int
	PreviousAC  int
	NewAC       int
	AttackTotal int
	WasHit      bool
	TurnedMiss  bool
	Message     string
}

// UseShield raises AC by the rules bonus until the caster's next turn, after
// the triggering attack total is known, and reports whether the higher AC
// turns the hit into a miss.
//
// Precondition: currentAC is the caster's effective AC before the reaction.
// Postcondition: On success the reaction is consumed, one slot of level >= 1 is
// spent and ACBonus() grew by the rules bonus. On error nothing changes.
func (l *Ledger) UseShield(slots *character.SpellSlots, attackTotal, currentAC int) (ShieldResult, error) {
	if err := l.check(Shield); err != nil {
		return ShieldResult{}, err
	}
	if slots == nil || !slots.HasAtLeast(1) {
		return ShieldResult{}, fmt.Errorf("%w: shield needs a 1st-level slot", ErrNoSpellSlot)
	}
	lvl, _ := slots.Spend(1)
	l.consume(Shield)
	l.modifiers = append(l.modifiers, ACModifier{Source: Shield, Amount: l.rules.ShieldACBonus})

	res := ShieldResult{
		SlotLevel:   lvl,
		PreviousAC:  currentAC,
		NewAC:       currentAC + l.rules.ShieldACBonus,
		AttackTotal: attackTotal,
		WasHit:      attackTotal >= currentAC,
	}
	res.TurnedMiss = res.WasHit && attackTotal < res.NewAC
	switch {
	case res.TurnedMiss:
		res.Message = fmt.Sprintf("casts shield: AC %d → %d, the attack (%d) misses", res.PreviousAC, res.NewAC, attackTotal)
	case res.WasHit:
		res.Message = fmt.Sprintf("casts shield: AC %d → %d, the attack (%d) still hits", res.PreviousAC, res.NewAC, attackTotal)
	default:
		res.Message = fmt.Sprintf("casts shield: AC %d → %d", res.PreviousAC, res.NewAC)
	}
	return res, nil
}

// CounterspellResult reports an attempt to negate a spell.
type CounterspellResult struct {
	SlotLevel   int
	EffectLevel int
	AutoSuccess bool
	Roll        int
	Total       int
	DC          int
	Countered   bool
	Message     string
}

// UseCounterspell spends a slot of at least the rules level. Effects at or
// below the slot level are negated outright; higher ones need a spellcasting
// ability check against 10 + effect level.
//
// Postcondition: On success the reaction is consumed and a slot spent. A
// failed check is a valid result, not an error.
func (l *Ledger) UseCounterspell(slots *character.SpellSlots, effectLevel, spellMod int, d dice.Dicer) (CounterspellResult, error) {
	if err := l.check(Counterspell); err != nil {
		return CounterspellResult{}, err
	}
	minLevel := l.rules.CounterspellSlotLevel
	if slots == nil || !slots.HasAtLeast(minLevel) {
		return CounterspellResult{}, fmt.Errorf("%w: counterspell needs a level %d slot", ErrNoSpellSlot, minLevel)
	}
	lvl, _ := slots.Spend(minLevel)
	l.consume(Counterspell)

	res := CounterspellResult{SlotLevel: lvl, EffectLevel: effectLevel}
	if effectLevel <= lvl {
		res.AutoSuccess = true
		res.Countered = true
		res.Message = fmt.Sprintf("counterspells a level %d effect", effectLevel)
		return res, nil
	}
	res.DC = 10 + effectLevel
	res.Roll = d.D20(dice.Normal).Natural
	res.Total = res.Roll + spellMod
	res.Countered = res.Total >= res.DC
	if res.Countered {
		res.Message = fmt.Sprintf("counterspells a level %d effect (%d vs DC %d)", effectLevel, res.Total, res.DC)
	} else {
		res.Message = fmt.Sprintf("fails to counter a level %d effect (%d vs DC %d)", effectLevel, res.Total, res.DC)
	}
	return res, nil
}

// AttackProfile is what an opportunity attack needs from the attacker.
type AttackProfile struct {
	AttackBonus int
	Damage      dice.Expression
	DamageBonus int
	DamageType  string
	Mode        dice.Mode
	AutoCrit    bool
}

// OpportunityResult reports an opportunity attack. Damage is not applied.
type OpportunityResult struct {
	Natural  int
	Total    int
	TargetAC int
	Hit      bool
	Critical bool
	Damage   int
	Roll     dice.RollResult
	Message  string
}

// UseOpportunityAttack makes one attack roll against targetAC and rolls
// damage on a hit. The caller applies the damage.
//
// Postcondition: On success the reaction is consumed.
func (l *Ledger) UseOpportunityAttack(p AttackProfile, targetAC int, d dice.Dicer) (OpportunityResult, error) {
	if err := l.check(OpportunityAttack); err != nil {
		return OpportunityResult{}, err
	}
	l.consume(OpportunityAttack)

	d20 := d.D20(p.Mode)
	res := OpportunityResult{Natural: d20.Natural, Total: d20.Natural + p.AttackBonus, TargetAC: targetAC}
	switch {
	case d20.IsNatural1():
		res.Hit = false
	case d20.IsNatural20():
		res.Hit, res.Critical = true, true
	default:
		res.Hit = res.Total >= targetAC
	}
	if res.Hit && p.AutoCrit {
		res.Critical = true
	}
	if !res.Hit {
		res.Message = fmt.Sprintf("makes an opportunity attack (%d vs AC %d) and misses", res.Total, targetAC)
		return res, nil
	}
	expr := p.Damage
	if res.Critical {
		expr = expr.Doubled()
	}
	res.Roll = d.Roll(expr)
	res.Damage = max(res.Roll.Total()+p.DamageBonus, 0)
	res.Message = fmt.Sprintf("makes an opportunity attack (%d vs AC %d) and hits for %d", res.Total, targetAC, res.Damage)
	return res, nil
}

// UncannyDodgeResult reports halved incoming damage.
type UncannyDodgeResult struct {
	Original int
	Reduced  int
	Message  string
}

// UseUncannyDodge halves incoming attack damage, rounding down.
//
// Postcondition: On success the reaction is consumed.
func (l *Ledger) UseUncannyDodge(incoming int) (UncannyDodgeResult, error) {
	if err := l.check(UncannyDodge); err != nil {
		return UncannyDodgeResult{}, err
	}
	l.consume(UncannyDodge)
	reduced := max(incoming, 0) / 2
	return UncannyDodgeResult{
		Original: incoming,
		Reduced:  reduced,
		Message:  fmt.Sprintf("uses uncanny dodge, halving %d damage to %d", incoming, reduced),
	}, nil
}
