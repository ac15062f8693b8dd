// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis runs to a SQLite database so past
// results can be listed and searched.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/insight-engine/internal/pipeline"
	"github.com/pdiddy/insight-engine/pkg/types"
)

const dbFile = "insights.db"

// Store manages the runs SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the runs database at dataDir/insights.db,
// creating the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			persona TEXT NOT NULL,
			job TEXT,
			documents TEXT NOT NULL,
			word_count INTEGER,
			readability REAL,
			complexity TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			document TEXT NOT NULL,
			title TEXT NOT NULL,
			importance_rank INTEGER NOT NULL,
			page INTEGER NOT NULL,
			refined_text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_run_id ON sections(run_id)`,
		`CREATE TABLE IF NOT EXISTS failures (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			document TEXT NOT NULL,
			stage TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS timings (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			stage TEXT NOT NULL,
			document TEXT,
			duration_us INTEGER NOT NULL,
			heap_delta INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='sections_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE sections_fts USING fts5(title, refined_text, content=sections, content_rowid=rowid)`,
			`CREATE TRIGGER sections_ai AFTER INSERT ON sections BEGIN
				INSERT INTO sections_fts(rowid, title, refined_text) VALUES (new.rowid, new.title, new.refined_text);
			END`,
			`CREATE TRIGGER sections_ad AFTER DELETE ON sections BEGIN
				INSERT INTO sections_fts(sections_fts, rowid, title, refined_text) VALUES('delete', old.rowid, old.title, old.refined_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun persists one completed analysis run and returns its ID.
func (s *Store) SaveRun(ctx context.Context, report *pipeline.Report) (int64, error) {
	docs, err := json.Marshal(report.Result.Metadata.InputDocuments)
	if err != nil {
		return 0, fmt.Errorf("encoding document list: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, persona, job, documents, word_count, readability, complexity)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Result.Metadata.ProcessingTimestamp,
		report.Result.Metadata.Persona,
		report.Result.Metadata.JobToBeDone,
		string(docs),
		report.ContentStats.WordCount,
		report.ContentStats.Readability,
		report.ContentStats.Complexity,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	for i, sec := range report.Result.ExtractedSections {
		refinedText := ""
		if i < len(report.Result.SubsectionAnalysis) {
			refinedText = report.Result.SubsectionAnalysis[i].RefinedText
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sections (run_id, document, title, importance_rank, page, refined_text)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, sec.Document, sec.SectionTitle, sec.ImportanceRank, sec.PageNumber, refinedText,
		); err != nil {
			return 0, fmt.Errorf("inserting section: %w", err)
		}
	}

	for _, f := range report.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (run_id, document, stage, error) VALUES (?, ?, ?, ?)`,
			runID, f.Document, f.Stage, f.Err.Error(),
		); err != nil {
			return 0, fmt.Errorf("inserting failure: %w", err)
		}
	}

	for _, t := range report.Timings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO timings (run_id, stage, document, duration_us, heap_delta) VALUES (?, ?, ?, ?, ?)`,
			runID, t.Stage, t.Document, t.Duration.Microseconds(), t.HeapDelta,
		); err != nil {
			return 0, fmt.Errorf("inserting timing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID        int64    `json:"id" yaml:"id"`
	CreatedAt string   `json:"created_at" yaml:"created_at"`
	Persona   string   `json:"persona" yaml:"persona"`
	Job       string   `json:"job" yaml:"job"`
	Documents []string `json:"documents" yaml:"documents"`
	Sections  int      `json:"sections" yaml:"sections"`
	Failures  int      `json:"failures" yaml:"failures"`
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.created_at, r.persona, r.job, r.documents,
			(SELECT count(*) FROM sections WHERE run_id = r.id),
			(SELECT count(*) FROM failures WHERE run_id = r.id)
		FROM runs r ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var docs string
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Persona, &r.Job, &docs, &r.Sections, &r.Failures); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if err := json.Unmarshal([]byte(docs), &r.Documents); err != nil {
			return nil, fmt.Errorf("decoding document list for run %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SectionHit is one full-text search result across stored runs.
type SectionHit struct {
	RunID       int64  `json:"run_id" yaml:"run_id"`
	Document    string `json:"document" yaml:"document"`
	Title       string `json:"title" yaml:"title"`
	PageNumber  int    `json:"page_number" yaml:"page_number"`
	RefinedText string `json:"refined_text" yaml:"refined_text"`
}

// SearchSections runs an FTS5 query over stored section titles and
// refined text, ranked by relevance.
func (s *Store) SearchSections(ctx context.Context, query string, limit int) ([]SectionHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sec.run_id, sec.document, sec.title, sec.page, sec.refined_text
		FROM sections_fts
		JOIN sections sec ON sec.rowid = sections_fts.rowid
		WHERE sections_fts MATCH ?
		ORDER BY sections_fts.rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching sections: %w", err)
	}
	defer rows.Close()

	var out []SectionHit
	for rows.Next() {
		var h SectionHit
		if err := rows.Scan(&h.RunID, &h.Document, &h.Title, &h.PageNumber, &h.RefinedText); err != nil {
			return nil, fmt.Errorf("scanning section hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetResult reconstructs the saved output record for one run.
func (s *Store) GetResult(ctx context.Context, runID int64) (*types.AnalysisResult, error) {
	var meta types.ResultMetadata
	var docs string
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, persona, job, documents FROM runs WHERE id = ?`, runID,
	).Scan(&meta.ProcessingTimestamp, &meta.Persona, &meta.JobToBeDone, &docs)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %d: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(docs), &meta.InputDocuments); err != nil {
		return nil, fmt.Errorf("decoding document list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT document, title, importance_rank, page, refined_text
		FROM sections WHERE run_id = ? ORDER BY importance_rank, rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading sections for run %d: %w", runID, err)
	}
	defer rows.Close()

	result := &types.AnalysisResult{Metadata: meta}
	for rows.Next() {
		var sec types.ExtractedSectionEntry
		var refined string
		if err := rows.Scan(&sec.Document, &sec.SectionTitle, &sec.ImportanceRank, &sec.PageNumber, &refined); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		result.ExtractedSections = append(result.ExtractedSections, sec)
		result.SubsectionAnalysis = append(result.SubsectionAnalysis, types.SubsectionEntry{
			Document:    sec.Document,
			RefinedText: refined,
			PageNumber:  sec.PageNumber,
		})
	}
	return result, rows.Err()
}

// SaveResultFile writes the serialized result JSON next to the database
// for direct consumption, named by run ID and timestamp.
func (s *Store) SaveResultFile(dataDir string, runID int64, result types.AnalysisResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}

	name := fmt.Sprintf("run-%d-%s.json", runID, time.Now().UTC().Format("20060102T150405Z"))
	path := filepath.Join(dataDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing result file: %w", err)
	}
	return path, nil
}
