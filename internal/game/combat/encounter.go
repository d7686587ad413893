package combat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/character"
	"github.com/cory-johannsen/tactics/internal/game/condition"
	"github.com/cory-johannsen/tactics/internal/game/damage"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/position"
	"github.com/cory-johannsen/tactics/internal/game/reaction"
	"github.com/cory-johannsen/tactics/internal/scripting"
)

// Turn-controller failure reasons.
const (
	ReasonTurnInProgress = "turn_in_progress"
	ReasonActionUsed     = "action_used"
	ReasonAlreadyMoved   = "already_moved"
	ReasonSelfTarget     = "self_target"
	ReasonAbilitySpent   = "ability_spent"
	ReasonUnknownAbility = "unknown_ability"
)

// ReasonRangedInMelee is reported when a ranged attacker has an enemy in
// melee with it.
const ReasonRangedInMelee = "attacker_ranged_in_melee"

// Healing spells, in order of preference.
const (
	SpellHealingWord = "healing_word"
	SpellCureWounds  = "cure_wounds"
)

// AbilitySecondWind heals the user for 1d10 + level once per encounter.
const AbilitySecondWind = "second_wind"

// Encounter is the turn controller of one fight. Combatants act in
// initiative order; each turn runs StartTurn, at most one action and one
// move, then EndTurn. All methods are safe for concurrent use; they are
// serialised by one mutex.
type Encounter struct {
	mu        sync.Mutex
	id        string
	core      *Core
	positions *position.Tracker
	narrator  Narrator
	logger    *zap.Logger

	order []*Combatant
	byID  map[string]*Combatant
	spent map[string]map[string]bool

	round   int
	turn    int
	turnSeq uint64
	active  *Combatant
	acted   bool
	moved   bool
	disengd bool
	over    bool
	winner  Side
	timer   *ActionTimer

	infos atomic.Pointer[map[string]*scripting.CombatantInfo]
}

// NewEncounter rolls initiative (d20 + dexterity modifier) and orders the
// combatants, highest first.
//
// Precondition: at least two combatants with unique ids; every combatant has
// a band in positions.
// Postcondition: No turn is active; StartTurn begins round 1.
func NewEncounter(core *Core, positions *position.Tracker, narrator Narrator, logger *zap.Logger, combatants []*Combatant) (*Encounter, error) {
	if len(combatants) < 2 {
		return nil, fmt.Errorf("encounter needs at least 2 combatants, got %d", len(combatants))
	}
	e := &Encounter{
		id:        uuid.NewString(),
		core:      core,
		positions: positions,
		narrator:  narrator,
		logger:    logger,
		byID:      make(map[string]*Combatant, len(combatants)),
		spent:     make(map[string]map[string]bool),
		turn:      -1,
	}
	for _, c := range combatants {
		if _, dup := e.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate combatant id %q", c.ID)
		}
		e.byID[c.ID] = c
		e.spent[c.ID] = make(map[string]bool)
		c.Initiative = core.Dice().D20(dice.Normal).Natural + c.Template.Abilities.Modifier(character.Dexterity)
	}
	e.order = append([]*Combatant(nil), combatants...)
	sort.SliceStable(e.order, func(i, j int) bool {
		a, b := e.order[i], e.order[j]
		if a.Initiative != b.Initiative {
			return a.Initiative > b.Initiative
		}
		return a.Template.Abilities.Dexterity > b.Template.Abilities.Dexterity
	})
	e.refreshInfos()
	return e, nil
}

// ID returns the encounter id.
func (e *Encounter) ID() string { return e.id }

// Round returns the current round, 0 before the first turn.
func (e *Encounter) Round() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.round
}

// InitiativeOrder returns the combatants in initiative order.
func (e *Encounter) InitiativeOrder() []*Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Combatant(nil), e.order...)
}

// Combatant returns the combatant with id.
func (e *Encounter) Combatant(id string) (*Combatant, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.byID[id]
	return c, ok
}

// Active returns the combatant whose turn it is, or nil between turns.
func (e *Encounter) Active() *Combatant {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Over reports whether the encounter has ended and which side won.
func (e *Encounter) Over() (bool, Side) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.over, e.winner
}

// CombatantInfo returns a read-only view of a combatant for scripts. It
// never takes the encounter lock, so Lua hooks may call it mid-turn.
func (e *Encounter) CombatantInfo(id string) *scripting.CombatantInfo {
	m := e.infos.Load()
	if m == nil {
		return nil
	}
	return (*m)[id]
}

// refreshInfos publishes a fresh script view. Caller holds e.mu or owns e.
func (e *Encounter) refreshInfos() {
	m := make(map[string]*scripting.CombatantInfo, len(e.order))
	for _, c := range e.order {
		info := &scripting.CombatantInfo{
			ID:    c.ID,
			Name:  c.Name,
			HP:    c.Vitals.HP,
			MaxHP: c.Vitals.MaxHP,
			AC:    c.EffectiveAC(),
			Band:  string(e.positions.Band(c.ID)),
		}
		for _, cond := range c.Conditions.All() {
			info.Conditions = append(info.Conditions, string(cond.Type))
		}
		m[c.ID] = info
	}
	e.infos.Store(&m)
}

func (e *Encounter) narrate(ctx context.Context, actor, event, text string) {
	if text == "" || e.narrator == nil {
		return
	}
	line := Line{EncounterID: e.id, Round: e.round, ActorID: actor, Event: event, Text: text, At: time.Now()}
	if err := e.narrator.Narrate(ctx, line); err != nil {
		e.logger.Warn("narration failed", zap.String("encounter", e.id), zap.Error(err))
	}
}

// TurnResult reports the start of a turn.
type TurnResult struct {
	Result
	Combatant *Combatant
	Round     int
	Expired   []reaction.ACModifier
	DeathSave *DeathSaveResult
	// CanAct is false when the combatant is down or incapacitated and the
	// turn should be ended immediately.
	CanAct bool
}

// StartTurn advances to the next living combatant in initiative order,
// restores its reaction, expires its reaction AC bonuses and its dodge, and
// rolls its death save when one is needed.
func (e *Encounter) StartTurn(ctx context.Context) TurnResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "start_turn"
	switch {
	case e.over:
		return TurnResult{Result: fail(op, TerminalState, ReasonEncounterOver)}
	case e.active != nil:
		return TurnResult{Result: fail(op, InvalidOperation, ReasonTurnInProgress)}
	}

	next := -1
	for i := 1; i <= len(e.order); i++ {
		idx := (e.turn + i) % len(e.order)
		if !e.order[idx].IsDead() {
			next = idx
			break
		}
	}
	if next < 0 {
		e.over = true
		return TurnResult{Result: fail(op, TerminalState, ReasonEncounterOver)}
	}
	if e.turn < 0 || next <= e.turn {
		e.round++
	}
	e.turn = next
	e.turnSeq++
	c := e.order[next]
	e.active, e.acted, e.moved, e.disengd = c, false, false, false
	c.Dodging = false
	e.positions.Settle(c.ID)

	reset := e.core.ResetReactions(c)
	res := TurnResult{Combatant: c, Round: e.round, Expired: reset.Expired}
	e.narrate(ctx, c.ID, "turn_start", fmt.Sprintf("Round %d: %s's turn", e.round, c.Name))
	e.narrate(ctx, c.ID, "reaction_reset", reset.Message)

	if e.core.NeedsDeathSave(c) {
		ds := e.core.RollDeathSave(c)
		res.DeathSave = &ds
		e.narrate(ctx, c.ID, "death_save", ds.Message)
		e.checkOver()
	}
	res.CanAct = c.CanAct()
	if !res.CanAct && !c.IsDown() {
		e.narrate(ctx, c.ID, "cannot_act", c.Name+" cannot act")
	}
	if res.CanAct && !c.IsHenchman() && c.Side == SideParty && e.core.Rules().ActionTimeout > 0 {
		seq := e.turnSeq
		if e.timer == nil {
			e.timer = NewActionTimer(e.core.Rules().ActionTimeout, func() { e.expire(seq) })
		} else {
			e.timer.Reset(e.core.Rules().ActionTimeout, func() { e.expire(seq) })
		}
	}
	e.refreshInfos()
	res.Result = succeed(op, fmt.Sprintf("%s's turn", c.Name))
	return res
}

// expire makes the active combatant dodge when its turn timed out.
func (e *Encounter) expire(seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.turnSeq != seq || e.active == nil || e.acted {
		return
	}
	e.active.Dodging = true
	e.acted = true
	e.narrate(context.Background(), e.active.ID, "timeout", e.active.Name+" hesitates and takes the dodge action")
}

// EndResult reports the end of a turn.
type EndResult struct {
	Result
	Expired []*condition.Condition
	Over    bool
	Winner  Side
}

// EndTurn ticks the active combatant's conditions and resets every
// combatant's sneak attack.
func (e *Encounter) EndTurn(ctx context.Context) EndResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "end_turn"
	if e.active == nil {
		return EndResult{Result: fail(op, InvalidOperation, ReasonNoActiveTurn)}
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	c := e.active
	tick := e.core.TickConditions(c)
	e.narrate(ctx, c.ID, "conditions_expired", tick.Message)
	for _, o := range e.order {
		e.core.ResetSneakAttack(o)
	}
	e.active = nil
	e.checkOver()
	e.refreshInfos()
	return EndResult{Result: succeed(op, c.Name+" ends its turn"), Expired: tick.Expired, Over: e.over, Winner: e.winner}
}

// checkOver ends the encounter when every hostile is dead or every party
// member is down.
func (e *Encounter) checkOver() {
	if e.over {
		return
	}
	partyUp, hostileUp := false, false
	for _, c := range e.order {
		switch {
		case c.Side == SideParty && c.Standing():
			partyUp = true
		case c.Side == SideHostile && !c.IsDead():
			hostileUp = true
		}
	}
	switch {
	case !hostileUp:
		e.over, e.winner = true, SideParty
	case !partyUp:
		e.over, e.winner = true, SideHostile
	}
	if e.over {
		e.logger.Debug("encounter over", zap.String("encounter", e.id), zap.Stringer("winner", e.winner))
	}
}

// actor checks that id may take an action now.
func (e *Encounter) actor(op, id string) (*Combatant, Result, bool) {
	if e.over {
		return nil, fail(op, TerminalState, ReasonEncounterOver), false
	}
	if e.active == nil {
		return nil, fail(op, InvalidOperation, ReasonNoActiveTurn), false
	}
	if e.active.ID != id {
		return nil, fail(op, InvalidOperation, ReasonNotYourTurn), false
	}
	if !e.active.CanAct() {
		return nil, fail(op, InvalidOperation, ReasonIncapacitated), false
	}
	return e.active, Result{}, true
}

func (e *Encounter) action(op, id string) (*Combatant, Result, bool) {
	c, r, ok := e.actor(op, id)
	if !ok {
		return nil, r, false
	}
	if e.acted {
		return nil, fail(op, InvalidOperation, ReasonActionUsed), false
	}
	return c, Result{}, true
}

func (e *Encounter) target(op, id string) (*Combatant, Result, bool) {
	t, ok := e.byID[id]
	if !ok {
		return nil, fail(op, InvalidOperation, ReasonUnknownCombatant), false
	}
	if t.IsDead() {
		return nil, fail(op, TerminalState, ReasonDead), false
	}
	return t, Result{}, true
}

// Dodge spends the active combatant's action: attacks against it have
// disadvantage until its next turn.
func (e *Encounter) Dodge(ctx context.Context, id string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, r, ok := e.action("dodge", id)
	if !ok {
		return r
	}
	return e.dodge(ctx, c)
}

func (e *Encounter) dodge(ctx context.Context, c *Combatant) Result {
	c.Dodging = true
	e.acted = true
	msg := c.Name + " takes the dodge action"
	e.narrate(ctx, c.ID, "dodge", msg)
	return succeed("dodge", msg)
}

// Disengage spends the action so that moving out of melee this turn
// provokes no opportunity attacks.
func (e *Encounter) Disengage(ctx context.Context, id string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, r, ok := e.action("disengage", id)
	if !ok {
		return r
	}
	e.disengd, e.acted = true, true
	msg := c.Name + " disengages"
	e.narrate(ctx, c.ID, "disengage", msg)
	return succeed("disengage", msg)
}

// MoveResult reports a move and the opportunity attacks it provoked.
type MoveResult struct {
	Result
	Position    position.Pair
	Opportunity []OpportunityResult
}

// Move shifts the active combatant to band. Leaving melee without
// disengaging offers every adjacent enemy an opportunity attack.
func (e *Encounter) Move(ctx context.Context, id string, band position.Band) MoveResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, r, ok := e.actor("move", id)
	if !ok {
		return MoveResult{Result: r}
	}
	return e.move(ctx, c, band)
}

func (e *Encounter) move(ctx context.Context, c *Combatant, band position.Band) MoveResult {
	const op = "move"
	if _, err := position.ParseBand(string(band)); err != nil {
		return MoveResult{Result: fail(op, InvalidOperation, ReasonOutOfReach)}
	}
	if e.moved {
		return MoveResult{Result: fail(op, InvalidOperation, ReasonAlreadyMoved)}
	}
	if !e.core.CanMove(c) {
		return MoveResult{Result: fail(op, InvalidOperation, ReasonCannotMove)}
	}
	from := e.positions.Band(c.ID)
	if from == band {
		pair, _ := e.positions.Position(c.ID)
		return MoveResult{Result: succeed(op, ""), Position: pair}
	}

	// Adjacent enemies are those sharing melee with the mover before it moves.
	// Only melee weapons threaten an opportunity attack.
	var threats []*Combatant
	if from == position.Melee && !e.disengd {
		for _, o := range e.order {
			if o.Side.Opposes(c.Side) && o.CanAct() && !o.Weapon().Ranged && e.positions.Band(o.ID) == position.Melee {
				threats = append(threats, o)
			}
		}
	}

	pair := e.positions.Move(c.ID, band)
	e.moved = true
	res := MoveResult{Position: pair}
	res.Result = succeed(op, fmt.Sprintf("%s moves from %s to %s", c.Name, pair.Previous, pair.Current))
	e.narrate(ctx, c.ID, "move", res.Message)

	if pair.Left(position.Melee) {
		for _, o := range threats {
			if c.IsDead() || !o.Reactions.CanUse(reaction.OpportunityAttack) {
				continue
			}
			oa := e.core.UseOpportunityAttack(o, c)
			if !oa.Success {
				continue
			}
			res.Opportunity = append(res.Opportunity, oa)
			e.narrate(ctx, o.ID, "opportunity_attack", oa.Message)
			if oa.Damage != nil && oa.Damage.Killed {
				e.onDeath(ctx, c)
			}
		}
	}
	e.checkOver()
	e.refreshInfos()
	return res
}

// AttackResult reports a full attack resolution.
type AttackResult struct {
	Result
	AttackerID   string
	TargetID     string
	Melee        bool
	Modifiers    condition.Modifiers
	Roll         dice.D20Result
	AttackBonus  int
	Total        int
	TargetAC     int
	Hit          bool
	Critical     bool
	Shield       *ShieldResult
	Sneak        *SneakAttackResult
	UncannyDodge *UncannyDodgeResult
	DamageRoll   dice.RollResult
	BaseDamage   int
	Damage       *DamageResult
}

// ResolveAttack runs one weapon attack by the active combatant against
// targetID: modifiers, the d20 roll, automatic criticals, the defender's
// shield window, sneak attack, the defender's uncanny dodge window, damage
// and death-save bookkeeping.
func (e *Encounter) ResolveAttack(ctx context.Context, attackerID, targetID string) AttackResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, r, ok := e.action("attack", attackerID)
	if !ok {
		return AttackResult{Result: r}
	}
	return e.attack(ctx, a, targetID)
}

func (e *Encounter) attack(ctx context.Context, a *Combatant, targetID string) AttackResult {
	const op = "attack"
	t, r, ok := e.target(op, targetID)
	if !ok {
		return AttackResult{Result: r}
	}
	if t.ID == a.ID {
		return AttackResult{Result: fail(op, InvalidOperation, ReasonSelfTarget)}
	}

	w := a.Weapon()
	melee := !w.Ranged
	aBand, tBand := e.positions.Band(a.ID), e.positions.Band(t.ID)
	if melee && (aBand != position.Melee || tBand != position.Melee) {
		return AttackResult{Result: fail(op, InvalidOperation, ReasonOutOfReach)}
	}

	res := AttackResult{AttackerID: a.ID, TargetID: t.ID, Melee: melee}
	res.Modifiers = e.core.AttackModifiers(a, t, melee)
	if !melee && aBand == position.Melee && e.enemyInMelee(a) {
		res.Modifiers.Disadvantage = true
		res.Modifiers.Reasons = append(res.Modifiers.Reasons, ReasonRangedInMelee)
	}

	e.acted = true
	a.LastTargetID = t.ID
	res.Roll = e.core.Dice().D20(res.Modifiers.Mode())
	res.AttackBonus = a.AttackBonus()
	res.Total = res.Roll.Natural + res.AttackBonus
	res.TargetAC = t.EffectiveAC()
	switch {
	case res.Roll.IsNatural1():
	case res.Roll.IsNatural20():
		res.Hit, res.Critical = true, true
	default:
		res.Hit = res.Total >= res.TargetAC
	}
	if res.Hit && e.core.IsAutoCrit(t, melee) {
		res.Critical = true
	}

	// Shield can only turn a hit that was not a natural 20 into a miss.
	bonus := e.core.Rules().Reactions.ShieldACBonus
	if res.Hit && !res.Roll.IsNatural20() && res.Total < res.TargetAC+bonus && t.Reactions.CanUse(reaction.Shield) && t.Slots.HasAtLeast(1) {
		sh := e.core.UseShield(t, res.Total)
		if sh.Success {
			res.Shield = &sh
			res.TargetAC = sh.Shield.NewAC
			e.narrate(ctx, t.ID, "shield", sh.Message)
			if sh.Shield.TurnedMiss {
				res.Hit, res.Critical = false, false
			}
		}
	}

	if !res.Hit {
		res.Result = succeed(op, fmt.Sprintf("%s attacks %s (%d vs AC %d) and misses", a.Name, t.Name, res.Total, res.TargetAC))
		e.narrate(ctx, a.ID, "attack", res.Message)
		e.refreshInfos()
		return res
	}

	expr := w.DamageExpression()
	if res.Critical {
		expr = expr.Doubled()
	}
	res.DamageRoll = e.core.Dice().Roll(expr)
	res.BaseDamage = max(res.DamageRoll.Total()+a.DamageBonus(), 0)
	total := res.BaseDamage

	setup := SneakSetup{
		Advantage:      res.Modifiers.Advantage,
		Disadvantage:   res.Modifiers.Disadvantage,
		AllyNearTarget: e.allyNear(a, t),
		Critical:       res.Critical,
	}
	if a.Template.Class == character.ClassRogue {
		sn := e.core.ApplySneakAttack(a, setup, total)
		res.Sneak = &sn
		total = sn.Applied.TotalDamage
	}

	hitMsg := fmt.Sprintf("%s hits %s (%d vs AC %d)", a.Name, t.Name, res.Total, res.TargetAC)
	if res.Critical {
		hitMsg = fmt.Sprintf("%s critically hits %s (%d vs AC %d)", a.Name, t.Name, res.Total, res.TargetAC)
	}
	e.narrate(ctx, a.ID, "attack", hitMsg)
	if res.Sneak != nil && res.Sneak.Success {
		e.narrate(ctx, a.ID, "sneak_attack", res.Sneak.Message)
	}

	if total > 0 && !t.IsDown() && t.Reactions.CanUse(reaction.UncannyDodge) {
		ud := e.core.UseUncannyDodge(t, total)
		if ud.Success {
			res.UncannyDodge = &ud
			total = ud.UncannyDodge.Reduced
			e.narrate(ctx, t.ID, "uncanny_dodge", ud.Message)
		}
	}

	dmg := e.core.ApplyDamage(t, total, damage.Type(w.DamageType), res.Critical)
	res.Damage = &dmg
	e.narrate(ctx, t.ID, "damage", dmg.Message)
	if dmg.Killed {
		e.onDeath(ctx, t)
	}
	e.checkOver()
	e.refreshInfos()
	res.Result = succeed(op, hitMsg+"; "+dmg.Message)
	return res
}

// enemyInMelee reports whether an enemy able to act shares melee with c.
func (e *Encounter) enemyInMelee(c *Combatant) bool {
	for _, o := range e.order {
		if o.Side.Opposes(c.Side) && o.CanAct() && e.positions.Band(o.ID) == position.Melee {
			return true
		}
	}
	return false
}

// allyNear reports whether another standing ally of a shares t's band.
func (e *Encounter) allyNear(a, t *Combatant) bool {
	band := e.positions.Band(t.ID)
	for _, o := range e.order {
		if o.ID != a.ID && o.Side == a.Side && o.CanAct() && e.positions.Band(o.ID) == band {
			return true
		}
	}
	return false
}

// onDeath clears every henchman's designated target that pointed at dead.
func (e *Encounter) onDeath(ctx context.Context, dead *Combatant) {
	for _, o := range e.order {
		if o.IsHenchman() && o.Command.TargetOverride == dead.ID {
			if r := e.core.ClearTargetOverride(o); r.Success {
				e.narrate(ctx, o.ID, "target_cleared", r.Message)
			}
		}
	}
}

// healSpell returns the healing spell c can cast now, or "".
func (e *Encounter) healSpell(c *Combatant) string {
	if c.Slots.HasAtLeast(1) {
		for _, s := range []string{SpellHealingWord, SpellCureWounds} {
			if c.Template.KnowsSpell(s) {
				return s
			}
		}
	}
	return ""
}

// Heal casts the active combatant's healing spell on targetID: healing word
// (1d4) reaches any band, cure wounds (1d8) only the caster's own band.
func (e *Encounter) Heal(ctx context.Context, healerID, targetID string) HealResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, r, ok := e.action("heal", healerID)
	if !ok {
		return HealResult{Result: r}
	}
	return e.heal(ctx, h, targetID)
}

func (e *Encounter) heal(ctx context.Context, h *Combatant, targetID string) HealResult {
	const op = "heal"
	t, r, ok := e.target(op, targetID)
	if !ok {
		return HealResult{Result: r}
	}
	spell := e.healSpell(h)
	if spell == "" {
		return HealResult{Result: fail(op, InvalidOperation, ReasonNoHealing)}
	}
	sides := 4
	if spell == SpellCureWounds {
		if e.positions.Band(h.ID) != e.positions.Band(t.ID) {
			return HealResult{Result: fail(op, InvalidOperation, ReasonOutOfReach)}
		}
		sides = 8
	}
	h.Slots.Spend(1)
	e.acted = true
	roll := e.core.Dice().Roll(dice.Expression{Count: 1, Sides: sides, Modifier: h.Template.SpellcastingModifier()})
	res := e.core.Heal(t, max(roll.Total(), 1))
	if res.Success {
		res.Message = fmt.Sprintf("%s casts %s; %s", h.Name, strings.ReplaceAll(spell, "_", " "), res.Message)
		e.narrate(ctx, h.ID, "heal", res.Message)
	}
	e.checkOver()
	e.refreshInfos()
	return res
}

// UseAbility spends the active combatant's action on a once-per-encounter
// special ability from its template. Second wind heals 1d10 + level; other
// abilities are narrated only.
func (e *Encounter) UseAbility(ctx context.Context, id, ability string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, r, ok := e.action("use_ability", id)
	if !ok {
		return r
	}
	return e.useAbility(ctx, c, ability)
}

func (e *Encounter) useAbility(ctx context.Context, c *Combatant, ability string) Result {
	const op = "use_ability"
	if !c.Template.HasAbility(ability) {
		return fail(op, NotEligible, ReasonUnknownAbility)
	}
	if e.spent[c.ID][ability] {
		return fail(op, NotEligible, ReasonAbilitySpent)
	}
	e.spent[c.ID][ability] = true
	e.acted = true
	msg := fmt.Sprintf("%s uses %s", c.Name, strings.ReplaceAll(ability, "_", " "))
	if ability == AbilitySecondWind {
		roll := e.core.Dice().Roll(dice.Expression{Count: 1, Sides: 10, Modifier: c.Template.Level})
		h := e.core.Heal(c, roll.Total())
		msg += "; " + h.Message
	}
	e.narrate(ctx, c.ID, "ability", msg)
	e.refreshInfos()
	return succeed(op, msg)
}

// Order parses a text order for a henchman, mapping a target name to a
// combatant id, and issues it.
func (e *Encounter) Order(ctx context.Context, henchmanID, line string) CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.byID[henchmanID]
	if !ok {
		return CommandResult{Result: fail("order", InvalidOperation, ReasonUnknownCombatant)}
	}
	order, err := e.core.Commands().ParseOrder(line)
	if err != nil {
		return CommandResult{Result: classify("order", err)}
	}
	opts := order.Options
	if opts.TargetID != "" {
		t := e.findTarget(opts.TargetID)
		if t == nil {
			return CommandResult{Result: fail("order", InvalidOperation, ReasonUnknownCombatant)}
		}
		opts.TargetID = t.ID
	}
	if opts.HoldAt == "" {
		opts.HoldAt = e.positions.Band(h.ID)
	}
	res := e.core.IssueCommand(h, order.Command.Name, opts)
	e.narrate(ctx, h.ID, "command", res.Message)
	return res
}

// findTarget matches an id, then a case-insensitive name, then a name prefix.
func (e *Encounter) findTarget(s string) *Combatant {
	if c, ok := e.byID[s]; ok {
		return c
	}
	for _, c := range e.order {
		if strings.EqualFold(c.Name, s) {
			return c
		}
	}
	for _, c := range e.order {
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(s)) {
			return c
		}
	}
	return nil
}
