package ai

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/position"
)

// Action is the kind of turn action a henchman proposes.
type Action string

const (
	ActionAttack     Action = "attack"
	ActionDefend     Action = "dodge"
	ActionDisengage  Action = "disengage"
	ActionUseAbility Action = "use_ability"
	ActionHeal       Action = "heal"
)

// Movement is an optional movement intent accompanying an action.
type Movement string

const (
	MoveNone         Movement = ""
	MoveAdvance      Movement = "advance"
	MoveStayNear     Movement = "stay_near_player"
	MoveFollow       Movement = "follow_player"
	MoveFlank        Movement = "flank"
	MoveRetreat      Movement = "retreat"
	MoveKeepDistance Movement = "keep_distance"
	// MoveReturn walks back to Behavior.Destination, the band being held.
	MoveReturn       Movement = "return_to_post"
)

// Priorities of proposed behaviours; higher is more urgent.
const (
	PriorityLow      = 1
	PriorityNormal   = 5
	PriorityHigh     = 8
	PriorityCritical = 10
)

// Behavior is one proposed turn.
type Behavior struct {
	Action      Action
	TargetID    string
	Ability     string
	Movement    Movement
	// Destination is set only for MoveReturn.
	Destination position.Band
	Priority    int
	Reasoning   string
}

// String renders the behaviour for logs and narration.
func (b Behavior) String() string {
	s := string(b.Action)
	if b.TargetID != "" {
		s += " " + b.TargetID
	}
	if b.Ability != "" {
		s += " (" + b.Ability + ")"
	}
	if b.Movement != MoveNone {
		if b.Destination != "" {
			s += fmt.Sprintf(" [move: %s %s]", b.Movement, b.Destination)
		} else {
			s += fmt.Sprintf(" [move: %s]", b.Movement)
		}
	}
	return s
}

func attack(target *Actor, move Movement, priority int, why string) Behavior {
	return Behavior{Action: ActionAttack, TargetID: target.ID, Movement: move, Priority: priority, Reasoning: why}
}

func dodge(move Movement, why string) Behavior {
	return Behavior{Action: ActionDefend, Movement: move, Priority: PriorityLow, Reasoning: why}
}
