package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// RollDice rolls count dice with the given number of sides and no modifier.
//
// Precondition: count >= 0; sides >= 2.
func (r *Roller) RollDice(count, sides int) RollResult {
	return r.Roll(Expression{Count: count, Sides: sides})
}

// D20 rolls a d20 test in the given mode and logs both faces.
func (r *Roller) D20(mode Mode) D20Result {
	result := RollD20(mode, r.src)
	r.logger.Debug("d20 test",
		zap.Stringer("mode", mode),
		zap.Ints("rolls", result.Rolls),
		zap.Int("natural", result.Natural),
	)
	return result
}

// Dicer is the rolling surface the rules packages depend on. *Roller
// implements it; tests drive it with a FixedSource.
type Dicer interface {
	Roll(expr Expression) RollResult
	D20(mode Mode) D20Result
}

var _ Dicer = (*Roller)(nil)
