package dice

// Roll evaluates an Expression using src.
//
// Precondition: src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	return RollResult{
		Expression: expr.String(),
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// RollD20 rolls a d20 test in the given mode. Advantage and disadvantage roll
// two dice and keep the higher or lower face respectively.
func RollD20(mode Mode, src Source) D20Result {
	first := src.Intn(20) + 1
	if mode == Normal {
		return D20Result{Mode: mode, Rolls: []int{first}, Natural: first}
	}
	second := src.Intn(20) + 1
	kept := first
	if (mode == Advantage && second > first) || (mode == Disadvantage && second < first) {
		kept = second
	}
	return D20Result{Mode: mode, Rolls: []int{first, second}, Natural: kept}
}
