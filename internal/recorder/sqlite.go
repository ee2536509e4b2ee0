package recorder

import (
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp         INTEGER NOT NULL,
			run_id            TEXT NOT NULL,
			symbol            TEXT NOT NULL,
			strategy          TEXT,
			bar_time          INTEGER,
			close             REAL,
			stop              REAL,
			trailing          REAL,
			trade_state       TEXT,
			monitor_state     TEXT,
			trend_score       INTEGER,
			trend             TEXT,
			can_enter         INTEGER,
			entry_reason      TEXT,
			insufficient_data INTEGER,
			trace             TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_symbol_ts ON evaluations(symbol, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_eval_run ON evaluations(run_id)`,

		`CREATE TABLE IF NOT EXISTS position_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			run_id     TEXT,
			symbol     TEXT NOT NULL,
			event_type TEXT NOT NULL,
			kind       TEXT,
			from_value TEXT,
			to_value   TEXT,
			note       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_position_symbol_ts ON position_events(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps undefined values to NULL.
func nullable(v *float64) any {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return *v
}

func (r *SQLiteRecorder) RecordEvaluation(rec *EvaluationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := rec.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO evaluations
		(timestamp, run_id, symbol, strategy, bar_time, close, stop, trailing,
		 trade_state, monitor_state, trend_score, trend, can_enter, entry_reason,
		 insufficient_data, trace)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		ts.Unix(), rec.RunID, rec.Symbol, rec.Strategy, rec.BarTime,
		nullable(&rec.Close), nullable(&rec.Stop), nullable(rec.Trailing),
		rec.TradeState, rec.MonitorState, rec.TrendScore, rec.Trend,
		rec.CanEnter, rec.EntryReason, rec.InsufficientData, rec.Trace,
	)
	return err
}

func (r *SQLiteRecorder) RecordPositionEvent(evt *PositionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO position_events
		(timestamp, run_id, symbol, event_type, kind, from_value, to_value, note)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.RunID, evt.Symbol, evt.EventType,
		evt.Kind, evt.From, evt.To, evt.Note,
	)
	return err
}

// History returns the latest evaluations of symbol, newest first.
func (r *SQLiteRecorder) History(symbol string, limit int) ([]EvaluationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(`SELECT timestamp, run_id, symbol, strategy, bar_time,
		close, stop, trailing, trade_state, monitor_state, trend_score, trend,
		can_enter, entry_reason, insufficient_data
		FROM evaluations WHERE symbol = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []EvaluationRecord
	for rows.Next() {
		var (
			rec                  EvaluationRecord
			ts                   int64
			closePx, stop, trail sql.NullFloat64
		)
		if err := rows.Scan(&ts, &rec.RunID, &rec.Symbol, &rec.Strategy, &rec.BarTime,
			&closePx, &stop, &trail, &rec.TradeState, &rec.MonitorState, &rec.TrendScore,
			&rec.Trend, &rec.CanEnter, &rec.EntryReason, &rec.InsufficientData); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.RecordedAt = time.Unix(ts, 0)
		rec.Close = closePx.Float64
		rec.Stop = stop.Float64
		if trail.Valid {
			v := trail.Float64
			rec.Trailing = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
