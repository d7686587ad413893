package ai

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/game/command"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

// ScriptCaller is the interface the Resolver uses to evaluate Lua ability
// gates.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given scope's VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error)
}

// AbilityHookPrefix prefixes the Lua gate function for an ability, e.g.
// "can_use_second_wind(self_id, hp, max_hp)".
const AbilityHookPrefix = "can_use_"

type handler func(r *Resolver, st *command.State, snap *Snapshot) Behavior

// Resolver maps a command state and snapshot to a Behavior through a fixed
// dispatch table, then applies the stance profile.
//
// Resolver holds no per-encounter state and is safe for concurrent use when
// its ScriptCaller is.
type Resolver struct {
	profiles *Profiles
	caller   ScriptCaller
	scope    string
	logger   *zap.Logger
	table    map[command.Name]handler
}

// NewResolver constructs a Resolver. caller may be nil, in which case
// abilities are gated only by the actor's ability list.
//
// Precondition: profiles and logger must not be nil.
func NewResolver(profiles *Profiles, caller ScriptCaller, scope string, logger *zap.Logger) *Resolver {
	if profiles == nil {
		panic("ai.NewResolver: profiles must not be nil")
	}
	return &Resolver{
		profiles: profiles,
		caller:   caller,
		scope:    scope,
		logger:   logger,
		table: map[command.Name]handler{
			command.AttackTarget:  (*Resolver).attackTarget,
			command.AttackNearest: (*Resolver).attackNearest,
			command.DefendMe:      (*Resolver).defendMe,
			command.HoldPosition:  (*Resolver).holdPosition,
			command.Follow:        (*Resolver).follow,
			command.Flank:         (*Resolver).flank,
			command.FocusFire:     (*Resolver).focusFire,
			command.FallBack:      (*Resolver).fallBack,
			command.UseAbility:    (*Resolver).useAbility,
			command.HealMe:        (*Resolver).healMe,
		},
	}
}

// Resolve proposes one turn for the henchman described by snap.Self.
//
// Precondition: st, snap, snap.Self and snap.Player must not be nil.
// Postcondition: Returns a Behavior; never mutates snap.
func (r *Resolver) Resolve(st *command.State, snap *Snapshot) (Behavior, error) {
	if st == nil || snap == nil || snap.Self == nil || snap.Player == nil {
		return Behavior{}, fmt.Errorf("ai.Resolver.Resolve: state, snapshot, self and player must not be nil")
	}
	if !snap.Self.CanAct {
		return Behavior{Action: ActionDefend, Priority: PriorityLow, Reasoning: "cannot act"}, nil
	}
	h, ok := r.table[st.Current]
	if !ok {
		return Behavior{}, fmt.Errorf("ai.Resolver.Resolve: %w: %q", command.ErrUnknownCommand, st.Current)
	}
	b := h(r, st, snap)
	b = r.modulate(r.profiles.For(st.Stance), st, snap, b)
	r.logger.Debug("henchman decision",
		zap.String("combatant", snap.Self.ID),
		zap.String("command", string(st.Current)),
		zap.String("stance", string(st.Stance)),
		zap.Stringer("behavior", b),
		zap.String("reasoning", b.Reasoning),
	)
	return b, nil
}

func approach(self, target *Actor) Movement {
	if self.Band == target.Band {
		return MoveNone
	}
	return MoveAdvance
}

func (r *Resolver) attackTarget(st *command.State, snap *Snapshot) Behavior {
	if st.TargetOverride != "" {
		if e, ok := snap.Enemy(st.TargetOverride); ok {
			return attack(e, approach(snap.Self, e), PriorityHigh, "attacking the designated target")
		}
	}
	if e, ok := snap.Enemy(snap.Player.LastTargetID); ok {
		return attack(e, approach(snap.Self, e), PriorityHigh, "attacking the player's target")
	}
	b := r.attackNearest(st, snap)
	b.Reasoning = "no designated target; " + b.Reasoning
	return b
}

func (r *Resolver) attackNearest(_ *command.State, snap *Snapshot) Behavior {
	e := snap.NearestEnemy(snap.Self.Band)
	if e == nil {
		return dodge(MoveNone, "no living enemies")
	}
	return attack(e, approach(snap.Self, e), PriorityNormal, "attacking the nearest enemy")
}

func (r *Resolver) defendMe(_ *command.State, snap *Snapshot) Behavior {
	if e := snap.StrongestThreatIn(snap.Player.Band); e != nil {
		return attack(e, MoveStayNear, PriorityCritical, "engaging the strongest threat beside the player")
	}
	if e := snap.NearestEnemy(snap.Player.Band); e != nil {
		return attack(e, MoveStayNear, PriorityNormal, "no enemy beside the player; attacking the closest one to them")
	}
	return dodge(MoveStayNear, "guarding the player")
}

func (r *Resolver) holdPosition(st *command.State, snap *Snapshot) Behavior {
	post := holdBand(st, snap.Self)
	var target *Actor
	for _, e := range snap.EnemiesIn(post) {
		if target == nil || e.HP < target.HP {
			target = e
		}
	}
	var b Behavior
	if target == nil {
		b = dodge(MoveNone, "holding position with nothing in reach")
	} else {
		b = attack(target, MoveNone, PriorityNormal, "holding position and striking what is in reach")
	}
	if post != snap.Self.Band {
		b.Movement = MoveReturn
		b.Destination = post
		b.Reasoning = fmt.Sprintf("returning to %s; %s", post, b.Reasoning)
	}
	return b
}

// holdBand is the band a hold-position henchman keeps, defaulting to where
// it stands.
func holdBand(st *command.State, self *Actor) position.Band {
	if st.HoldAt != "" {
		return st.HoldAt
	}
	return self.Band
}

func (r *Resolver) follow(_ *command.State, snap *Snapshot) Behavior {
	move := MoveNone
	if snap.Self.Band != snap.Player.Band {
		move = MoveFollow
	}
	var target *Actor
	for _, e := range snap.EnemiesIn(snap.Self.Band) {
		if target == nil || e.HP < target.HP {
			target = e
		}
	}
	if target == nil {
		return dodge(move, "following the player")
	}
	return attack(target, move, PriorityNormal, "following the player and striking what is in reach")
}

func (r *Resolver) flank(st *command.State, snap *Snapshot) Behavior {
	target, ok := snap.Enemy(st.TargetOverride)
	if !ok {
		target, ok = snap.Enemy(snap.Player.LastTargetID)
	}
	if !ok {
		target = snap.NearestEnemy(snap.Player.Band)
	}
	if target == nil {
		return dodge(MoveFollow, "nothing to flank")
	}
	return attack(target, MoveFlank, PriorityNormal, "flanking the player's target")
}

func (r *Resolver) focusFire(st *command.State, snap *Snapshot) Behavior {
	if e, ok := snap.Enemy(st.TargetOverride); ok {
		return attack(e, approach(snap.Self, e), PriorityHigh, "focusing fire on the designated target")
	}
	if e := snap.WeakestEnemy(); e != nil {
		return attack(e, approach(snap.Self, e), PriorityNormal, "focus target gone; finishing the weakest enemy")
	}
	return dodge(MoveNone, "no living enemies")
}

func (r *Resolver) fallBack(_ *command.State, snap *Snapshot) Behavior {
	return Behavior{Action: ActionDisengage, Movement: MoveRetreat, Priority: PriorityHigh, Reasoning: "falling back"}
}

func (r *Resolver) useAbility(st *command.State, snap *Snapshot) Behavior {
	if st.Ability != "" && r.abilityAvailable(st.Ability, snap.Self) {
		b := Behavior{Action: ActionUseAbility, Ability: st.Ability, Priority: PriorityHigh, Reasoning: "using " + st.Ability}
		if e := snap.NearestEnemy(snap.Self.Band); e != nil {
			b.TargetID = e.ID
		}
		return b
	}
	b := r.attackNearest(st, snap)
	b.Reasoning = fmt.Sprintf("%s unavailable; %s", st.Ability, b.Reasoning)
	return b
}

func (r *Resolver) healMe(st *command.State, snap *Snapshot) Behavior {
	p := snap.Player
	switch {
	case !snap.Self.CanHeal:
		b := r.defendMe(st, snap)
		b.Reasoning = "no healing available; " + b.Reasoning
		return b
	case p.HP >= p.MaxHP:
		b := r.defendMe(st, snap)
		b.Reasoning = "player is unhurt; " + b.Reasoning
		return b
	}
	priority := PriorityHigh
	if p.HPFraction() < 0.5 {
		priority = PriorityCritical
	}
	move := MoveNone
	if snap.Self.Band != p.Band {
		move = MoveStayNear
	}
	return Behavior{Action: ActionHeal, TargetID: p.ID, Movement: move, Priority: priority, Reasoning: "healing the player"}
}

// abilityAvailable asks the Lua gate first; an undefined gate falls back to
// the actor's ability list.
func (r *Resolver) abilityAvailable(ability string, self *Actor) bool {
	if r.caller != nil {
		val, err := r.caller.CallHook(r.scope, AbilityHookPrefix+ability,
			lua.LString(self.ID), lua.LNumber(self.HP), lua.LNumber(self.MaxHP))
		if err != nil {
			r.logger.Warn("ability gate failed", zap.String("ability", ability), zap.Error(err))
			return false
		}
		if val != lua.LNil {
			return lua.LVAsBool(val)
		}
	}
	return self.HasAbility(ability)
}

// modulate applies the stance profile. A hold-position henchman never
// leaves its post for a stance: hold already strikes everything in reach.
func (r *Resolver) modulate(p *Profile, st *command.State, snap *Snapshot, b Behavior) Behavior {
	self := snap.Self
	holding := st.Current == command.HoldPosition
	if b.Action == ActionAttack && p.LowHPThreshold > 0 && self.HPFraction() < p.LowHPThreshold {
		b.Action = ActionDefend
		b.TargetID = ""
		b.Reasoning = fmt.Sprintf("%s stance: too hurt to attack; dodging instead (%s)", p.Stance, b.Reasoning)
		return b
	}
	if b.Action == ActionDefend && p.PressWhenIdle && !holding {
		if e := snap.NearestEnemy(self.Band); e != nil {
			return attack(e, approach(self, e), b.Priority,
				fmt.Sprintf("%s stance: attacking instead of dodging (%s)", p.Stance, b.Reasoning))
		}
	}
	if b.Action == ActionAttack && p.KeepDistance && b.Movement == MoveNone && !holding {
		if e, ok := snap.Enemy(b.TargetID); ok && e.Band == self.Band && self.Band == position.Melee {
			b.Movement = MoveKeepDistance
			b.Reasoning = fmt.Sprintf("%s stance: opening distance; %s", p.Stance, b.Reasoning)
		}
	}
	return b
}
