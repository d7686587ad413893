package combat

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock/mock_narrator.go -package=mock github.com/cory-johannsen/tactics/internal/game/combat Narrator

// Line is one narration entry produced by an encounter.
type Line struct {
	EncounterID string
	Round       int
	ActorID     string
	Event       string
	Text        string
	At          time.Time
}

// Narrator consumes the plain result messages an encounter produces. The
// core never interprets what the narrator does with them.
type Narrator interface {
	Narrate(ctx context.Context, line Line) error
}

// LogNarrator writes narration to a zap logger at info level.
type LogNarrator struct {
	logger *zap.Logger
}

// NewLogNarrator creates a LogNarrator.
//
// Precondition: logger must not be nil.
func NewLogNarrator(logger *zap.Logger) *LogNarrator {
	return &LogNarrator{logger: logger}
}

// Narrate logs line.
func (n *LogNarrator) Narrate(_ context.Context, line Line) error {
	n.logger.Info(line.Text,
		zap.String("encounter", line.EncounterID),
		zap.Int("round", line.Round),
		zap.String("actor", line.ActorID),
		zap.String("event", line.Event),
	)
	return nil
}

// MultiNarrator fans a line out to several narrators.
type MultiNarrator []Narrator

// Narrate sends line to every narrator and joins their errors.
func (m MultiNarrator) Narrate(ctx context.Context, line Line) error {
	var errs []error
	for _, n := range m {
		if err := n.Narrate(ctx, line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
