package condition

// Flags are the mechanical states conditions toggle on a combatant. Each flag
// is a reference count so that removing one condition leaves the flag set
// while another condition still holds it.
type Flags struct {
	incapacitated    int
	speedZero        int
	stealthAdvantage int
}

// Incapacitated reports whether any incapacitating condition is active.
func (f Flags) Incapacitated() bool { return f.incapacitated > 0 }

// SpeedZero reports whether any condition reduces speed to 0.
func (f Flags) SpeedZero() bool { return f.speedZero > 0 }

// StealthAdvantage reports whether any condition grants stealth advantage.
func (f Flags) StealthAdvantage() bool { return f.stealthAdvantage > 0 }

// Effect is the strategy a condition type runs when applied and removed.
// OnRemove must undo exactly what OnApply did.
type Effect struct {
	OnApply  func(f *Flags)
	OnRemove func(f *Flags)
}

type flagCounter func(f *Flags) *int

var (
	incapacitatedFlag flagCounter = func(f *Flags) *int { return &f.incapacitated }
	speedZeroFlag     flagCounter = func(f *Flags) *int { return &f.speedZero }
	stealthFlag       flagCounter = func(f *Flags) *int { return &f.stealthAdvantage }
)

func effectFor(def *Definition) Effect {
	var counters []flagCounter
	if def.Incapacitating {
		counters = append(counters, incapacitatedFlag)
	}
	if def.SpeedZero {
		counters = append(counters, speedZeroFlag)
	}
	if def.StealthAdvantage {
		counters = append(counters, stealthFlag)
	}
	return Effect{
		OnApply: func(f *Flags) {
			for _, c := range counters {
				*c(f)++
			}
		},
		OnRemove: func(f *Flags) {
			for _, c := range counters {
				if p := c(f); *p > 0 {
					*p--
				}
			}
		},
	}
}
