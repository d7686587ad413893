package main

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

// scenario describes who fights and where they start.
type scenario struct {
	Party     []string
	Henchmen  []string
	Hostiles  []string
	Orders    map[string]string // henchman id → order line
	PartyBand position.Band
	FoeBand   position.Band
	MaxRounds int
}

// outcome summarises a finished encounter.
type outcome struct {
	EncounterID string
	Seed        uint64
	Rounds      int
	Over        bool
	Winner      combat.Side
	Survivors   []string
}

func (o outcome) String() string {
	if !o.Over {
		return fmt.Sprintf("no winner after %d rounds", o.Rounds)
	}
	return fmt.Sprintf("%s wins after %d rounds; standing: %s", o.Winner, o.Rounds, strings.Join(o.Survivors, ", "))
}

// build instantiates the scenario's combatants. Repeated template ids get
// numbered instance ids and names.
func (sc scenario) build(ctx context.Context, e *env, s *session) ([]*combat.Combatant, *position.Tracker, error) {
	core := s.engine.Core()
	pos := position.NewTracker()
	seen := make(map[string]int)
	var out []*combat.Combatant

	add := func(tplID string, side combat.Side, band position.Band) (*combat.Combatant, error) {
		tpl, err := e.catalog.Template(ctx, tplID)
		if err != nil {
			return nil, err
		}
		seen[tplID]++
		id, name := tplID, tpl.Name
		if n := seen[tplID]; n > 1 {
			id, name = fmt.Sprintf("%s-%d", tplID, n), fmt.Sprintf("%s %d", tpl.Name, n)
		}
		c := combat.NewCombatant(id, tpl, side, core.Registry(), core.Rules())
		c.Name = name
		pos.Place(id, band)
		out = append(out, c)
		return c, nil
	}

	var leader string
	for _, id := range sc.Party {
		c, err := add(id, combat.SideParty, sc.PartyBand)
		if err != nil {
			return nil, nil, err
		}
		if leader == "" {
			leader = c.ID
		}
	}
	if leader == "" && len(sc.Henchmen) > 0 {
		return nil, nil, fmt.Errorf("henchmen need at least one party member to follow")
	}
	for _, id := range sc.Henchmen {
		c, err := add(id, combat.SideParty, sc.PartyBand)
		if err != nil {
			return nil, nil, err
		}
		c.MakeHenchman(leader)
	}
	for _, id := range sc.Hostiles {
		if _, err := add(id, combat.SideHostile, sc.FoeBand); err != nil {
			return nil, nil, err
		}
	}
	return out, pos, nil
}

// play starts the scenario on the session's engine and runs it to the end
// or the round cap.
func (sc scenario) play(ctx context.Context, e *env, s *session, seed uint64) (outcome, error) {
	cs, pos, err := sc.build(ctx, e, s)
	if err != nil {
		return outcome{}, err
	}
	enc, err := s.engine.Start(pos, cs)
	if err != nil {
		return outcome{}, err
	}
	defer s.engine.End(enc.ID())

	for _, id := range slices.Sorted(maps.Keys(sc.Orders)) {
		line := sc.Orders[id]
		if res := enc.Order(ctx, id, line); !res.Success {
			return outcome{}, fmt.Errorf("order %q for %s: %w", line, id, res.Err())
		}
	}

	for ctx.Err() == nil {
		turn := enc.StartTurn(ctx)
		if !turn.Success {
			break
		}
		if turn.Round > sc.MaxRounds {
			enc.EndTurn(ctx)
			break
		}
		c := turn.Combatant
		switch {
		case !turn.CanAct:
		case c.IsHenchman():
			enc.TakeHenchmanTurn(ctx, c.ID)
		default:
			autoTurn(ctx, enc, pos, c)
		}
		if end := enc.EndTurn(ctx); end.Over {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	over, winner := enc.Over()
	o := outcome{EncounterID: enc.ID(), Seed: seed, Rounds: enc.Round(), Over: over, Winner: winner}
	for _, c := range enc.InitiativeOrder() {
		if c.Standing() {
			o.Survivors = append(o.Survivors, c.Name)
		}
	}
	return o, nil
}
