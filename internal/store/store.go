// Package store archives sampling and complexity results in SQLite.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/rugosity/internal/rugosity"
)

// ErrNotFound is returned when a session ID is not in the archive.
var ErrNotFound = errors.New("session not found")

// migrations holds the numbered schema migrations applied by Open.
//
//go:embed migrations/*.sql
var migrations embed.FS

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Kind distinguishes archived result types.
type Kind string

const (
	KindSample     Kind = "sample"
	KindComplexity Kind = "complexity"
)

// Session is one archived run. For complexity runs Trials counts windows,
// Discarded counts skipped windows and Mean holds the ratio.
type Session struct {
	ID        string
	DEM       string
	Kind      Kind
	CreatedAt time.Time
	Seed      uint64
	Params    rugosity.SessionParams

	Trials    int
	Kept      int
	Discarded int
	Mean      float64
	StdDev    float64
	Median    float64
	P05       float64
	P95       float64
}

// Store is a result archive.
type Store struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

// Open opens or creates the archive at path.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	version, err := migrateUp(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("opened result archive", zap.String("path", path), zap.Uint("schema_version", version))
	return &Store{db: db, log: log, now: time.Now}, nil
}

// migrateUp applies pending migrations and returns the schema version.
func migrateUp(db *sql.DB) (uint, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("failed to read migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	// m is not closed: that would close db.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration up failed: %w", err)
	}
	version, _, err := m.Version()
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Close closes the archive.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSample archives a sampling session and its values and returns the
// new session ID.
func (s *Store) SaveSample(demName string, seed uint64, p rugosity.SessionParams, d *rugosity.Distribution) (string, error) {
	sess := Session{
		ID:        uuid.New().String(),
		DEM:       demName,
		Kind:      KindSample,
		CreatedAt: s.now().UTC(),
		Seed:      seed,
		Params:    p,
		Trials:    d.Trials,
		Kept:      len(d.Values),
		Discarded: d.Discarded,
		Mean:      d.Mean,
		StdDev:    d.StdDev,
		Median:    d.Median,
		P05:       d.P05,
		P95:       d.P95,
	}
	if err := s.insert(sess, d.Values); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// SaveComplexity archives a surface complexity estimate.
func (s *Store) SaveComplexity(demName string, c rugosity.Complexity) (string, error) {
	nan := math.NaN()
	sess := Session{
		ID:        uuid.New().String(),
		DEM:       demName,
		Kind:      KindComplexity,
		CreatedAt: s.now().UTC(),
		Trials:    c.Windows + c.Skipped,
		Kept:      c.Windows,
		Discarded: c.Skipped,
		Mean:      c.Ratio,
		StdDev:    nan,
		Median:    nan,
		P05:       nan,
		P95:       nan,
	}
	if err := s.insert(sess, nil); err != nil {
		return "", err
	}
	return sess.ID, nil
}

func (s *Store) insert(sess Session, values []float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	p := sess.Params
	_, err = tx.Exec(`
		INSERT INTO sessions (id, dem, kind, created_at, seed, trials, kept, discarded,
			length_m, random_length, min_length_m, max_length_m, orientation_deg, random_orientation,
			mean, stddev, median, p05, p95)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.DEM, string(sess.Kind), sess.CreatedAt.UTC().Format(timeLayout), int64(sess.Seed),
		sess.Trials, sess.Kept, sess.Discarded,
		p.LengthM, p.RandomLength, p.MinLengthM, p.MaxLengthM, p.OrientationDeg, p.RandomOrientation,
		nullable(sess.Mean), nullable(sess.StdDev), nullable(sess.Median), nullable(sess.P05), nullable(sess.P95))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if len(values) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO samples (session_id, seq, rugosity) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, v := range values {
			if _, err := stmt.Exec(sess.ID, i, v); err != nil {
				return fmt.Errorf("failed to insert sample %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("archived session",
		zap.String("id", sess.ID),
		zap.String("dem", sess.DEM),
		zap.String("kind", string(sess.Kind)),
		zap.Int("samples", len(values)))
	return nil
}

const sessionColumns = `id, dem, kind, created_at, seed, trials, kept, discarded,
	length_m, random_length, min_length_m, max_length_m, orientation_deg, random_orientation,
	mean, stddev, median, p05, p95`

// Sessions lists archived sessions, newest first. An empty demName lists
// every DEM; limit <= 0 means no limit.
func (s *Store) Sessions(demName string, limit int) ([]Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if demName != "" {
		query += ` WHERE dem = ?`
		args = append(args, demName)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Session returns one archived session.
func (s *Store) Session(id string) (Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, err
}

// Samples returns the archived rugosity values of a session in order.
func (s *Store) Samples(id string) ([]float64, error) {
	if _, err := s.Session(id); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT rugosity FROM samples WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Delete removes a session and its samples.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (Session, error) {
	var (
		sess                           Session
		kind, created                  string
		seed                           int64
		lengthM, orientation           sql.NullFloat64
		minLen, maxLen                 sql.NullInt64
		mean, stddev, median, p05, p95 sql.NullFloat64
	)
	err := sc.Scan(&sess.ID, &sess.DEM, &kind, &created, &seed,
		&sess.Trials, &sess.Kept, &sess.Discarded,
		&lengthM, &sess.Params.RandomLength, &minLen, &maxLen, &orientation, &sess.Params.RandomOrientation,
		&mean, &stddev, &median, &p05, &p95)
	if err != nil {
		return Session{}, err
	}

	sess.Kind = Kind(kind)
	sess.Seed = uint64(seed)
	sess.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return Session{}, fmt.Errorf("session %s: bad created_at %q: %w", sess.ID, created, err)
	}
	sess.Params.Trials = sess.Trials
	sess.Params.LengthM = orNaN(lengthM)
	sess.Params.MinLengthM = int(minLen.Int64)
	sess.Params.MaxLengthM = int(maxLen.Int64)
	sess.Params.OrientationDeg = orNaN(orientation)
	sess.Mean = orNaN(mean)
	sess.StdDev = orNaN(stddev)
	sess.Median = orNaN(median)
	sess.P05 = orNaN(p05)
	sess.P95 = orNaN(p95)
	return sess, nil
}

// nullable maps NaN, which SQLite cannot hold, to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
