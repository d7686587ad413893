// Package command holds the directives a player issues to an AI-controlled
// ally, their text parser, and the per-ally persistent command state.
package command

// Name is the canonical identifier of a henchman command.
type Name string

const (
	AttackTarget     Name = "attack-target"
	AttackNearest    Name = "attack-nearest"
	DefendMe         Name = "defend-me"
	HoldPosition     Name = "hold-position"
	Follow           Name = "follow"
	Flank            Name = "flank"
	FocusFire        Name = "focus-fire"
	FallBack         Name = "fall-back"
	UseAbility       Name = "use-ability"
	HealMe           Name = "heal-me"
	StanceAggressive Name = "stance-aggressive"
	StanceDefensive  Name = "stance-defensive"
	StanceRanged     Name = "stance-ranged"
)

// Categories for organizing commands.
const (
	CategoryCombat   = "combat"
	CategoryMovement = "movement"
	CategorySupport  = "support"
	CategoryStance   = "stance"
)

// Arg describes the argument a command takes.
type Arg int

const (
	ArgNone Arg = iota
	ArgTarget
	ArgAbility
)

// Command defines a henchman directive.
type Command struct {
	// Name is the canonical command name.
	Name Name
	// Aliases are alternate words the player may type.
	Aliases []string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Arg is the argument the command requires.
	Arg Arg
	// Stance is set for stance commands, which change only the stance.
	Stance Stance
}

// IsStance reports whether the command changes stance only.
func (c *Command) IsStance() bool { return c.Stance != "" }

// BuiltinCommands returns the closed set of henchman commands.
func BuiltinCommands() []Command {
	return []Command{
		{Name: AttackTarget, Aliases: []string{"attack", "kill"}, Help: "Attack a named target (attack <target>)", Category: CategoryCombat, Arg: ArgTarget},
		{Name: AttackNearest, Aliases: []string{"engage", "nearest"}, Help: "Attack the closest enemy", Category: CategoryCombat},
		{Name: FocusFire, Aliases: []string{"focus"}, Help: "Concentrate attacks on a target (focus <target>)", Category: CategoryCombat, Arg: ArgTarget},
		{Name: Flank, Help: "Move to flank the current target", Category: CategoryMovement},
		{Name: DefendMe, Aliases: []string{"defend", "guard"}, Help: "Protect the commanding player", Category: CategoryCombat},
		{Name: HoldPosition, Aliases: []string{"hold", "stay"}, Help: "Stay put and attack whatever comes close", Category: CategoryMovement},
		{Name: Follow, Aliases: []string{"come"}, Help: "Stay with the commanding player", Category: CategoryMovement},
		{Name: FallBack, Aliases: []string{"retreat", "back"}, Help: "Disengage and retreat", Category: CategoryMovement},
		{Name: UseAbility, Aliases: []string{"use"}, Help: "Use a special ability (use <ability>)", Category: CategorySupport, Arg: ArgAbility},
		{Name: HealMe, Aliases: []string{"heal"}, Help: "Heal the commanding player", Category: CategorySupport},
		{Name: StanceAggressive, Aliases: []string{"aggressive"}, Help: "Favour attacking", Category: CategoryStance, Stance: Aggressive},
		{Name: StanceDefensive, Aliases: []string{"defensive"}, Help: "Favour self-preservation", Category: CategoryStance, Stance: Defensive},
		{Name: StanceRanged, Aliases: []string{"ranged"}, Help: "Keep distance from enemies", Category: CategoryStance, Stance: Ranged},
	}
}
