package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/san-kum/virtdrone/internal/sim"
)

// Rows per multi-row INSERT. Keeps the bound variables of the widest table
// well under SQLite's limit.
const insertBatchRows = 500

// SqliteStore keeps runs and their telemetry in a single SQLite file.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}
		db.SetMaxOpenConns(1)

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// SaveRun stores the run row and all of its telemetry in one transaction.
func (s *SqliteStore) SaveRun(ctx context.Context, meta RunMetadata, result *sim.Result) (runID int64, err error) {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		err = fmt.Errorf("marshaling metrics: %w", err)
		return
	}
	if meta.Preset == "" {
		meta.Preset = "custom"
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.Steps == 0 {
		meta.Steps = result.StepsTaken
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("beginning transaction: %w", err)
		return
	}
	defer rollbackWithError(tx, &err)

	res, err := tx.ExecContext(ctx, insertRunSQL,
		meta.Timestamp.UTC(),
		meta.Preset,
		meta.Seed,
		meta.Dt,
		meta.Steps,
		meta.Integrator,
		meta.Controller,
		meta.SpeedLaw,
		meta.TargetM,
		string(metrics),
	)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}
	if runID, err = res.LastInsertId(); err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
		return
	}

	if err = insertTelemetry(ctx, tx, runID, result.Telemetry); err != nil {
		return
	}
	if err = insertMotorTelemetry(ctx, tx, runID, result.Telemetry); err != nil {
		return
	}

	if err = tx.Commit(); err != nil {
		err = fmt.Errorf("committing transaction: %w", err)
	}
	return
}

func insertTelemetry(ctx context.Context, tx *sql.Tx, runID int64, samples []sim.Telemetry) error {
	const width = 12
	for start := 0; start < len(samples); start += insertBatchRows {
		end := min(start+insertBatchRows, len(samples))
		values := make([]any, 0, (end-start)*width)
		for _, t := range samples[start:end] {
			values = append(values,
				runID,
				t.Step,
				t.Time,
				t.Dt,
				t.AltitudeM,
				t.VelocityMps,
				t.TargetM,
				t.RPMRef,
				t.ThrustN,
				t.CurrentA,
				t.BatteryV,
				t.SoCPercent,
			)
		}
		if _, err := tx.ExecContext(ctx, batchInsert(insertTelemetrySQL, end-start, width), values...); err != nil {
			return fmt.Errorf("batch inserting telemetry: %w", err)
		}
	}
	return nil
}

func insertMotorTelemetry(ctx context.Context, tx *sql.Tx, runID int64, samples []sim.Telemetry) error {
	const width = 7
	values := make([]any, 0, insertBatchRows*width)
	rows := 0

	flush := func() error {
		if rows == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, batchInsert(insertMotorTelemetrySQL, rows, width), values...); err != nil {
			return fmt.Errorf("batch inserting motor telemetry: %w", err)
		}
		values = values[:0]
		rows = 0
		return nil
	}

	for _, t := range samples {
		for i, m := range t.Motors {
			values = append(values, runID, t.Step, i, m.Name, m.SpeedRPM, m.CurrentA, m.TemperatureC)
			rows++
			if rows == insertBatchRows {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

func (s *SqliteStore) Runs(ctx context.Context) (runs []RunMetadata, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var (
			id      int64
			meta    RunMetadata
			metrics sql.NullString
		)
		if err = rows.Scan(&id, &meta.Timestamp, &meta.Preset, &meta.Seed, &meta.Dt, &meta.Steps,
			&meta.Integrator, &meta.Controller, &meta.SpeedLaw, &meta.TargetM, &metrics); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		meta.ID = fmt.Sprint(id)
		if metrics.Valid {
			if err = json.Unmarshal([]byte(metrics.String), &meta.Metrics); err != nil {
				err = fmt.Errorf("decoding metrics of run %d: %w", id, err)
				return
			}
		}
		runs = append(runs, meta)
	}
	err = rows.Err()
	return
}

// Telemetry loads the samples of one run with their motor readings.
func (s *SqliteStore) Telemetry(ctx context.Context, runID int64) (samples []sim.Telemetry, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectTelemetrySQL, runID)
	if err != nil {
		err = fmt.Errorf("querying telemetry: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	index := make(map[int]int)
	for rows.Next() {
		var t sim.Telemetry
		if err = rows.Scan(&t.Step, &t.Time, &t.Dt, &t.AltitudeM, &t.VelocityMps, &t.TargetM,
			&t.RPMRef, &t.ThrustN, &t.CurrentA, &t.BatteryV, &t.SoCPercent); err != nil {
			err = fmt.Errorf("scanning telemetry: %w", err)
			return
		}
		index[t.Step] = len(samples)
		samples = append(samples, t)
	}
	if err = rows.Err(); err != nil {
		return
	}
	if len(samples) == 0 {
		err = fmt.Errorf("run %d: %w", runID, ErrNoTelemetry)
		return
	}

	motorRows, err := db.QueryContext(ctx, selectMotorTelemetrySQL, runID)
	if err != nil {
		err = fmt.Errorf("querying motor telemetry: %w", err)
		return
	}
	defer closeWithError(motorRows, &err)

	for motorRows.Next() {
		var (
			step int
			m    sim.MotorTelemetry
		)
		if err = motorRows.Scan(&step, &m.Name, &m.SpeedRPM, &m.CurrentA, &m.TemperatureC); err != nil {
			err = fmt.Errorf("scanning motor telemetry: %w", err)
			return
		}
		if i, ok := index[step]; ok {
			samples[i].Motors = append(samples[i].Motors, m)
		}
	}
	err = motorRows.Err()
	return
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}
		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
