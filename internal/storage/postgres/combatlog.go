package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// ErrEncounterNotFound is returned when an encounter has no logged lines.
var ErrEncounterNotFound = errors.New("encounter not found")

// ErrInvalidEncounterID is returned for encounter ids that are not UUIDs.
var ErrInvalidEncounterID = errors.New("invalid encounter id")

// EncounterSummary describes one logged encounter.
type EncounterSummary struct {
	ID      string
	Lines   int
	Rounds  int
	FirstAt time.Time
	LastAt  time.Time
}

// CombatLogRepository stores narration lines. It implements combat.Narrator
// so an encounter can write to it directly.
type CombatLogRepository struct {
	pool *Pool
}

// NewCombatLogRepository creates a CombatLogRepository backed by the given pool.
//
// Precondition: pool must be a valid, open connection pool.
func NewCombatLogRepository(pool *Pool) *CombatLogRepository {
	return &CombatLogRepository{pool: pool}
}

// Narrate appends one line.
//
// Precondition: l.EncounterID must be a UUID.
// Postcondition: Returns ErrInvalidEncounterID (wrapped) for malformed ids.
func (r *CombatLogRepository) Narrate(ctx context.Context, l combat.Line) error {
	id, err := parseEncounterID(l.EncounterID)
	if err != nil {
		return err
	}
	_, err = r.pool.DB().Exec(ctx,
		`INSERT INTO combat_log (encounter_id, round, actor_id, event, text, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, l.Round, l.ActorID, l.Event, l.Text, atOrNow(l.At),
	)
	if err != nil {
		return fmt.Errorf("inserting combat log line: %w", err)
	}
	return nil
}

// AppendBatch stores lines in one transaction; either all are stored or none.
//
// Postcondition: Returns ErrInvalidEncounterID (wrapped) before writing
// anything if any line has a malformed id.
func (r *CombatLogRepository) AppendBatch(ctx context.Context, lines []combat.Line) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range lines {
		id, err := parseEncounterID(l.EncounterID)
		if err != nil {
			return err
		}
		batch.Queue(
			`INSERT INTO combat_log (encounter_id, round, actor_id, event, text, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			id, l.Round, l.ActorID, l.Event, l.Text, atOrNow(l.At),
		)
	}
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting combat log batch: %w", err)
		}
		return nil
	})
}

// Lines returns every line of an encounter in insertion order.
//
// Postcondition: Returns ErrEncounterNotFound if nothing was logged for id.
func (r *CombatLogRepository) Lines(ctx context.Context, encounterID string) ([]combat.Line, error) {
	id, err := parseEncounterID(encounterID)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.DB().Query(ctx,
		`SELECT encounter_id, round, actor_id, event, text, created_at
		 FROM combat_log WHERE encounter_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying combat log: %w", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (combat.Line, error) {
		var (
			l   combat.Line
			eid uuid.UUID
		)
		err := row.Scan(&eid, &l.Round, &l.ActorID, &l.Event, &l.Text, &l.At)
		l.EncounterID = eid.String()
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning combat log: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEncounterNotFound
	}
	return lines, nil
}

// Encounters lists the most recently active encounters, newest first.
//
// Precondition: limit > 0.
func (r *CombatLogRepository) Encounters(ctx context.Context, limit int) ([]EncounterSummary, error) {
	rows, err := r.pool.DB().Query(ctx,
		`SELECT encounter_id, COUNT(*), MAX(round), MIN(created_at), MAX(created_at)
		 FROM combat_log GROUP BY encounter_id
		 ORDER BY MAX(id) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying encounters: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EncounterSummary, error) {
		var (
			s   EncounterSummary
			eid uuid.UUID
		)
		err := row.Scan(&eid, &s.Lines, &s.Rounds, &s.FirstAt, &s.LastAt)
		s.ID = eid.String()
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounters: %w", err)
	}
	return out, nil
}

// Delete removes every line of an encounter and reports how many were removed.
func (r *CombatLogRepository) Delete(ctx context.Context, encounterID string) (int64, error) {
	id, err := parseEncounterID(encounterID)
	if err != nil {
		return 0, err
	}
	tag, err := r.pool.DB().Exec(ctx, `DELETE FROM combat_log WHERE encounter_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deleting combat log: %w", err)
	}
	return tag.RowsAffected(), nil
}

func parseEncounterID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w %q: %v", ErrInvalidEncounterID, s, err)
	}
	return id, nil
}

func atOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
