package runindex

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GhanbarT/ball-and-hole/internal/protocol"
)

// SQLiteIndex is a queryable secondary index over run logs: one row per run
// and one row per round. Writes go through a single writer goroutine so the
// round loop never blocks on the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqRound
	reqFinish
)

type req struct {
	kind reqKind

	run    runRow
	round  roundRow
	finish finishRow
}

type runRow struct {
	RunID     string
	CreatedAt string
	Width     int
	Height    int
	NumHoles  int
	NumOrbs   int
	Strategy  string
	TeamMode  bool
	Seed      int64
	LogPath   string
}

type roundRow struct {
	RunID       string
	Round       uint64
	Digest      string
	Orbs        int
	FilledHoles int
	RawJSON     string
}

type finishRow struct {
	RunID      string
	FinalRound uint64
	Score      int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is enough
	// durability for a secondary index that can be rebuilt from the logs.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			num_holes INTEGER NOT NULL,
			num_orbs INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			team_mode INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			log_path TEXT NOT NULL,
			final_round INTEGER,
			final_score INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			digest TEXT NOT NULL,
			orbs INTEGER NOT NULL,
			filled_holes INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (run_id, round)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_digest ON rounds(digest);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun registers a run before its first round.
func (s *SQLiteIndex) RecordRun(runID, createdAt string, width, height, numHoles, numOrbs int, strategy string, teamMode bool, seed int64, logPath string) {
	if s == nil || s.closed.Load() {
		return
	}
	r := runRow{
		RunID: runID, CreatedAt: createdAt,
		Width: width, Height: height,
		NumHoles: numHoles, NumOrbs: numOrbs,
		Strategy: strategy, TeamMode: teamMode,
		Seed: seed, LogPath: logPath,
	}
	select {
	case s.ch <- req{kind: reqRun, run: r}:
	default:
		// Drop if the indexer falls behind; frame logs remain the source of truth.
	}
}

// WriteRound indexes one round's frame.
func (s *SQLiteIndex) WriteRound(msg protocol.FrameMsg) {
	if s == nil || s.closed.Load() {
		return
	}
	raw, _ := json.Marshal(msg)
	r := roundRow{
		RunID:       msg.RunID,
		Round:       msg.Round,
		Digest:      msg.Digest,
		Orbs:        msg.Orbs,
		FilledHoles: msg.FilledHoles,
		RawJSON:     string(raw),
	}
	select {
	case s.ch <- req{kind: reqRound, round: r}:
	default:
	}
}

// FinishRun records the final round and score once the run ends.
func (s *SQLiteIndex) FinishRun(runID string, finalRound uint64, score int) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqFinish, finish: finishRow{RunID: runID, FinalRound: finalRound, Score: score}}:
	default:
	}
}

// RoundDigests returns the per-round digests of a run in round order.
func (s *SQLiteIndex) RoundDigests(runID string) (map[uint64]string, error) {
	rows, err := s.db.Query(`SELECT round, digest FROM rounds WHERE run_id = ? ORDER BY round`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uint64]string{}
	for rows.Next() {
		var round int64
		var digest string
		if err := rows.Scan(&round, &digest); err != nil {
			return nil, err
		}
		out[uint64(round)] = digest
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRun, _ := s.db.Prepare(`INSERT OR REPLACE INTO runs(run_id,created_at,width,height,num_holes,num_orbs,strategy,team_mode,seed,log_path) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertRound, _ := s.db.Prepare(`INSERT OR REPLACE INTO rounds(run_id,round,digest,orbs,filled_holes,raw_json) VALUES(?,?,?,?,?,?)`)
	updateFinish, _ := s.db.Prepare(`UPDATE runs SET final_round = ?, final_score = ? WHERE run_id = ?`)
	defer func() {
		if insertRun != nil {
			_ = insertRun.Close()
		}
		if insertRound != nil {
			_ = insertRound.Close()
		}
		if updateFinish != nil {
			_ = updateFinish.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqRun:
			if insertRun == nil {
				continue
			}
			run := r.run
			teamMode := 0
			if run.TeamMode {
				teamMode = 1
			}
			if _, err := tx.Stmt(insertRun).Exec(
				run.RunID, run.CreatedAt,
				run.Width, run.Height,
				run.NumHoles, run.NumOrbs,
				run.Strategy, teamMode,
				run.Seed, run.LogPath,
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqRound:
			if insertRound == nil {
				continue
			}
			rr := r.round
			if _, err := tx.Stmt(insertRound).Exec(
				rr.RunID, int64(rr.Round), rr.Digest, rr.Orbs, rr.FilledHoles, rr.RawJSON,
			); err != nil {
				rollback()
				continue
			}
			opCount++

		case reqFinish:
			if updateFinish == nil {
				continue
			}
			fr := r.finish
			if _, err := tx.Stmt(updateFinish).Exec(int64(fr.FinalRound), fr.Score, fr.RunID); err != nil {
				rollback()
				continue
			}
			opCount++
		}

		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	commit()
}
