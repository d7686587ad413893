package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/position"
)

var (
	party, henchmen, hostiles []string
	orders                    []string
	partyBand, foeBand        string
	maxRounds                 int
	logNarration              bool

	encounters, workers int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one encounter and narrate it",
	Long: `Run one encounter and print its narration.

  Example: combatsim run --seed 42 --party hero,vex --henchmen brakka --order "brakka=defend" --hostiles goblin,goblin,ogre`,
	Args: cobra.NoArgs,
	RunE: runEncounter,
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many seeded encounters in parallel and report win rates",
	Args:  cobra.NoArgs,
	RunE:  runBatch,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the loaded character and monster templates",
	Args:  cobra.NoArgs,
	RunE:  listTemplates,
}

func init() {
	for _, c := range []*cobra.Command{runCmd, batchCmd} {
		f := c.Flags()
		f.StringSliceVar(&party, "party", []string{"hero", "vex", "mira"}, "party template ids")
		f.StringSliceVar(&henchmen, "henchmen", []string{"brakka", "tomas"}, "henchman template ids (follow the first party member)")
		f.StringSliceVar(&hostiles, "hostiles", []string{"goblin", "goblin", "goblin_archer", "ogre"}, "hostile template ids")
		f.StringArrayVar(&orders, "order", nil, `henchman order as "id=line", e.g. "brakka=attack ogre"`)
		f.StringVar(&partyBand, "party-band", string(position.Near), "starting band of the party")
		f.StringVar(&foeBand, "foe-band", string(position.Near), "starting band of the hostiles")
		f.IntVar(&maxRounds, "max-rounds", 20, "round cap")
	}
	runCmd.Flags().BoolVar(&logNarration, "log-narration", false, "also send narration to the logger")
	batchCmd.Flags().IntVar(&encounters, "encounters", 100, "number of encounters")
	batchCmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "parallel encounters")
}

// scenarioFromFlags validates the shared flags.
func scenarioFromFlags() (scenario, error) {
	pb, err := position.ParseBand(partyBand)
	if err != nil {
		return scenario{}, err
	}
	fb, err := position.ParseBand(foeBand)
	if err != nil {
		return scenario{}, err
	}
	sc := scenario{
		Party: party, Henchmen: henchmen, Hostiles: hostiles,
		Orders: make(map[string]string), PartyBand: pb, FoeBand: fb, MaxRounds: maxRounds,
	}
	for _, o := range orders {
		id, line, ok := strings.Cut(o, "=")
		if !ok || id == "" || line == "" {
			return scenario{}, fmt.Errorf("order %q: want id=line", o)
		}
		sc.Orders[id] = line
	}
	return sc, nil
}

func runEncounter(cmd *cobra.Command, _ []string) error {
	sc, err := scenarioFromFlags()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	e, err := newEnv(ctx, configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	var out combat.Narrator = &writerNarrator{w: cmd.OutOrStdout()}
	if logNarration {
		out = combat.MultiNarrator{out, combat.NewLogNarrator(e.logger)}
	}
	s, err := e.newSession(seed, out)
	if err != nil {
		return err
	}
	defer s.Close()

	o, err := sc.play(ctx, e, s, seed)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), o)
	return nil
}

// tally counts batch outcomes.
type tally struct {
	mu     sync.Mutex
	wins   map[combat.Side]int
	draws  int
	rounds int
}

func (t *tally) add(o outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if o.Over {
		t.wins[o.Winner]++
	} else {
		t.draws++
	}
	t.rounds += o.Rounds
}

func runBatch(cmd *cobra.Command, _ []string) error {
	sc, err := scenarioFromFlags()
	if err != nil {
		return err
	}
	if encounters < 1 || workers < 1 {
		return fmt.Errorf("encounters and workers must be >= 1")
	}
	e, err := newEnv(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := batch(cmd.Context(), e, sc, seed, encounters, workers)
	if err != nil {
		return err
	}
	printTally(cmd.OutOrStdout(), t, encounters)
	return nil
}

// batch plays n encounters, seeded base+1 … base+n, on at most workers
// goroutines.
func batch(ctx context.Context, e *env, sc scenario, base uint64, n, workers int) (*tally, error) {
	t := &tally{wins: make(map[combat.Side]int)}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range n {
		s := base + uint64(i) + 1
		g.Go(func() error {
			sess, err := e.newSession(s, nil)
			if err != nil {
				return err
			}
			defer sess.Close()
			o, err := sc.play(ctx, e, sess, s)
			if err != nil {
				return fmt.Errorf("seed %d: %w", s, err)
			}
			e.logger.Debug("encounter finished", zap.Uint64("seed", s), zap.Stringer("outcome", o))
			t.add(o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return t, nil
}

func printTally(w io.Writer, t *tally, n int) {
	pct := func(k int) float64 { return 100 * float64(k) / float64(n) }
	fmt.Fprintf(w, "encounters: %d\n", n)
	fmt.Fprintf(w, "party wins:   %4d (%.1f%%)\n", t.wins[combat.SideParty], pct(t.wins[combat.SideParty]))
	fmt.Fprintf(w, "hostile wins: %4d (%.1f%%)\n", t.wins[combat.SideHostile], pct(t.wins[combat.SideHostile]))
	fmt.Fprintf(w, "round cap:    %4d (%.1f%%)\n", t.draws, pct(t.draws))
	fmt.Fprintf(w, "mean rounds:  %.1f\n", float64(t.rounds)/float64(n))
}

func listTemplates(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	e, err := newEnv(ctx, configPath)
	if err != nil {
		return err
	}
	defer e.Close()

	w := cmd.OutOrStdout()
	for _, id := range e.catalog.IDs() {
		tpl, err := e.catalog.Template(ctx, id)
		if err != nil {
			return err
		}
		weapon := "unarmed"
		if tpl.Weapon != nil {
			weapon = fmt.Sprintf("%s %s", tpl.Weapon.Name, tpl.Weapon.Damage)
		}
		fmt.Fprintf(w, "%-14s %-14s %-8s L%-2d HP %-3d AC %-2d %s\n",
			id, tpl.Name, tpl.Class, tpl.Level, tpl.MaxHP, tpl.AC, weapon)
	}
	return nil
}

// writerNarrator prints narration lines.
type writerNarrator struct {
	mu sync.Mutex
	w  io.Writer
}

func (n *writerNarrator) Narrate(_ context.Context, l combat.Line) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "[R%d] %s\n", l.Round, l.Text)
	return err
}
