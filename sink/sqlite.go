package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nathoo/tacticore/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id    TEXT PRIMARY KEY,
	encounter_id   TEXT NOT NULL,
	round          INTEGER NOT NULL,
	actor_id       TEXT NOT NULL,
	action_type    TEXT NOT NULL,
	target_id      TEXT,
	dest_x         INTEGER,
	dest_y         INTEGER,
	reasoning_json TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_encounter
	ON decisions (encounter_id, round, actor_id);
`

// SQLite writes each decision as a row with the full reasoning trace as
// JSON. The file doubles as an audit log: the deterministic decision id
// makes a replayed encounter upsert onto its original rows.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database and runs the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Record upserts one decision row.
func (s *SQLite) Record(d *types.TacticalDecision) error {
	reasoning, err := json.Marshal(d.Reasoning)
	if err != nil {
		return fmt.Errorf("marshal reasoning: %w", err)
	}

	var destX, destY any
	if d.Destination != nil {
		destX, destY = d.Destination.X, d.Destination.Y
	}

	_, err = s.db.Exec(
		`INSERT INTO decisions
			(decision_id, encounter_id, round, actor_id, action_type,
			 target_id, dest_x, dest_y, reasoning_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(decision_id) DO UPDATE SET
			reasoning_json = excluded.reasoning_json,
			created_at     = excluded.created_at`,
		d.ID, d.EncounterID, d.Round, d.ActorID, string(d.Action.Type),
		d.TargetID, destX, destY, string(reasoning),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Replay loads the recorded decisions for an encounter in turn order.
func (s *SQLite) Replay(encounterID string) ([]types.TacticalDecision, error) {
	rows, err := s.db.Query(
		`SELECT decision_id, round, actor_id, action_type, target_id,
		        dest_x, dest_y, reasoning_json
		 FROM decisions
		 WHERE encounter_id = ?
		 ORDER BY round, rowid`,
		encounterID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []types.TacticalDecision
	for rows.Next() {
		var (
			d            types.TacticalDecision
			actionType   string
			targetID     sql.NullString
			destX, destY sql.NullInt64
			reasoning    []byte
		)
		if err := rows.Scan(&d.ID, &d.Round, &d.ActorID, &actionType,
			&targetID, &destX, &destY, &reasoning); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.EncounterID = encounterID
		d.Action.Type = types.ActionType(actionType)
		d.TargetID = targetID.String
		if destX.Valid && destY.Valid {
			d.Destination = &types.Position{X: int(destX.Int64), Y: int(destY.Int64)}
		}
		if err := json.Unmarshal(reasoning, &d.Reasoning); err != nil {
			return nil, fmt.Errorf("unmarshal reasoning: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
