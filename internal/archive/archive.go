// Package archive keeps written sample streams in a DuckDB file so they can
// be summarised and sliced by time without re-reading the CSV text.
package archive

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/marcboeker/go-duckdb"
	"github.com/rs/zerolog"

	"github.com/sensor-spy/backend/internal/codec"
	"github.com/sensor-spy/backend/internal/models"
)

// ErrUnknownFile is returned when no rows were ingested for a file.
var ErrUnknownFile = errors.New("no archived samples for file")

// Options tunes the DuckDB connection.
type Options struct {
	Threads     int
	MemoryLimit string
}

// Archive stores sample rows for the default 3/3/3/4 layout.
type Archive struct {
	db     *sql.DB
	dbPath string
	logger zerolog.Logger

	// DuckDB allows one writer; ingests are serialised.
	writeMu sync.Mutex

	// appendHook runs before each appended row; tests use it to fail an ingest.
	appendHook func(row int) error
}

// IngestResult summarises one ingest.
type IngestResult struct {
	File    string              `json:"file"`
	Rows    int                 `json:"rows"`
	Skipped []models.LineResult `json:"skipped,omitempty"`
}

// Stats summarises the archived samples of one file.
type Stats struct {
	File     string     `json:"file"`
	Count    int64      `json:"count"`
	FirstMs  int64      `json:"firstMs"`
	LastMs   int64      `json:"lastMs"`
	MeanAcc  [3]float64 `json:"meanAcc"`
	MeanGyro [3]float64 `json:"meanGyro"`
	MeanMag  [3]float64 `json:"meanMag"`
}

const valueColumns = `acc_x, acc_y, acc_z, gyro_x, gyro_y, gyro_z, mag_x, mag_y, mag_z, quat_w, quat_x, quat_y, quat_z`

// Open creates or opens the archive database in dir.
func Open(dir string, opts Options, logger zerolog.Logger) (*Archive, error) {
	dbPath := filepath.Join(dir, "samples.duckdb")
	if opts.Threads <= 0 {
		opts.Threads = 2
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "256MB"
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS samples (
			file   VARCHAR NOT NULL,
			ts     BIGINT  NOT NULL,
			acc_x  REAL, acc_y  REAL, acc_z  REAL,
			gyro_x REAL, gyro_y REAL, gyro_z REAL,
			mag_x  REAL, mag_y  REAL, mag_z  REAL,
			quat_w REAL, quat_x REAL, quat_y REAL, quat_z REAL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Info().Str("path", dbPath).Msg("sample archive opened")
	return &Archive{db: db, dbPath: dbPath, logger: logger}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Ingest replaces the archived rows of file with the sample lines in content.
// Lines that do not match the default layout are skipped and reported.
func (a *Archive) Ingest(ctx context.Context, file, content string) (*IngestResult, error) {
	result := &IngestResult{File: file}
	rows := make([]models.TimedSample, 0, strings.Count(content, "\n")+1)

	for i, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := codec.ParseSensorSampleLine(line, models.DefaultSampleLayout)
		if err != nil {
			result.Skipped = append(result.Skipped, models.LineResult{
				Line: i + 1, Content: line, Status: models.LineSkipped, Reason: err.Error(),
			})
			continue
		}
		rows = append(rows, s)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	// The appender shares conn, so its rows join the open transaction and
	// the previous rows of file stay visible until COMMIT.
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		return nil, fmt.Errorf("begin ingest: %w", err)
	}
	if err := a.replaceRows(ctx, conn, file, rows); err != nil {
		if _, rbErr := conn.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
			a.logger.Error().Err(rbErr).Str("file", file).Msg("rollback failed")
		}
		return nil, err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		if _, rbErr := conn.ExecContext(context.Background(), "ROLLBACK"); rbErr != nil {
			a.logger.Error().Err(rbErr).Str("file", file).Msg("rollback failed")
		}
		return nil, fmt.Errorf("commit ingest: %w", err)
	}

	result.Rows = len(rows)
	a.logger.Info().Str("file", file).Int("rows", result.Rows).Int("skipped", len(result.Skipped)).Msg("samples archived")
	return result, nil
}

func (a *Archive) replaceRows(ctx context.Context, conn *sql.Conn, file string, rows []models.TimedSample) error {
	if _, err := conn.ExecContext(ctx, "DELETE FROM samples WHERE file = ?", file); err != nil {
		return fmt.Errorf("clear previous rows: %w", err)
	}

	err := conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "samples")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, s := range rows {
			if a.appendHook != nil {
				if err := a.appendHook(i); err != nil {
					return fmt.Errorf("failed to append row %d: %w", i, err)
				}
			}
			err := appender.AppendRow(
				file, s.TimestampMs,
				s.Acc[0], s.Acc[1], s.Acc[2],
				s.Gyro[0], s.Gyro[1], s.Gyro[2],
				s.Mag[0], s.Mag[1], s.Mag[2],
				s.Quat[0], s.Quat[1], s.Quat[2], s.Quat[3],
			)
			if err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}

// IngestSamples is Ingest without the detailed result.
func (a *Archive) IngestSamples(file, content string) error {
	_, err := a.Ingest(context.Background(), file, content)
	return err
}

// Stats returns the summary of one archived file.
func (a *Archive) Stats(ctx context.Context, file string) (*Stats, error) {
	st := &Stats{File: file}
	var first, last sql.NullInt64
	err := a.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(ts), MAX(ts),
		       COALESCE(AVG(acc_x), 0), COALESCE(AVG(acc_y), 0), COALESCE(AVG(acc_z), 0),
		       COALESCE(AVG(gyro_x), 0), COALESCE(AVG(gyro_y), 0), COALESCE(AVG(gyro_z), 0),
		       COALESCE(AVG(mag_x), 0), COALESCE(AVG(mag_y), 0), COALESCE(AVG(mag_z), 0)
		FROM samples WHERE file = ?
	`, file).Scan(
		&st.Count, &first, &last,
		&st.MeanAcc[0], &st.MeanAcc[1], &st.MeanAcc[2],
		&st.MeanGyro[0], &st.MeanGyro[1], &st.MeanGyro[2],
		&st.MeanMag[0], &st.MeanMag[1], &st.MeanMag[2],
	)
	if err != nil {
		return nil, fmt.Errorf("stats query failed: %w", err)
	}
	if st.Count == 0 {
		return nil, fmt.Errorf("%s: %w", file, ErrUnknownFile)
	}
	st.FirstMs, st.LastMs = first.Int64, last.Int64
	return st, nil
}

// Range returns the samples of file with startMs <= ts <= endMs in time order.
// A limit <= 0 means no limit.
func (a *Archive) Range(ctx context.Context, file string, startMs, endMs int64, limit int) ([]models.TimedSample, error) {
	query := "SELECT ts, " + valueColumns + " FROM samples WHERE file = ? AND ts BETWEEN ? AND ? ORDER BY ts"
	args := []any{file, startMs, endMs}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("range query failed: %w", err)
	}
	defer rows.Close()

	out := make([]models.TimedSample, 0)
	for rows.Next() {
		s := models.TimedSample{SensorSample: models.SensorSample{
			Acc: make([]float32, 3), Gyro: make([]float32, 3), Mag: make([]float32, 3), Quat: make([]float32, 4),
		}}
		err := rows.Scan(&s.TimestampMs,
			&s.Acc[0], &s.Acc[1], &s.Acc[2],
			&s.Gyro[0], &s.Gyro[1], &s.Gyro[2],
			&s.Mag[0], &s.Mag[1], &s.Mag[2],
			&s.Quat[0], &s.Quat[1], &s.Quat[2], &s.Quat[3],
		)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Files lists the archived file names.
func (a *Archive) Files(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, "SELECT DISTINCT file FROM samples ORDER BY file")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]string, 0)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
