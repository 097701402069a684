// Package state provides the SQLite-backed entity and observation store.
//
// The store implements core.Store. Each method is a single round trip
// against the database; callers that need read-after-write do two calls.
package state

import (
	"cmp"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite" // SQLite driver (pure Go)
)

// Compile-time check that SQLiteStore satisfies the store contract.
var _ core.Store = (*SQLiteStore)(nil)

// SQLite's built-in lower() folds ASCII only. unicode_lower folds the way
// PostgreSQL's lower() does under a UTF-8 locale, so "Türkiye" matches "TÜRK".
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance.
// A nil logger discards all log output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every pooled connection to ":memory:" would see its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// --- Entity operations ---

// SaveEntities inserts entities, replacing name and region group of existing codes.
// Existing codes keep their original insertion position.
func (s *SQLiteStore) SaveEntities(ctx context.Context, entities []core.Entity) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	for _, e := range entities {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO entities (code, name, region_group) VALUES (?, ?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name, region_group = excluded.region_group`,
			e.Code, e.Name, e.RegionGroup,
		)
		if err != nil {
			return fmt.Errorf("failed to save entity %s: %w", e.Code, err)
		}
	}

	s.logger.Debug("saved entities", slog.Int("count", len(entities)))
	return nil
}

// SaveRegions inserts regions and sub-regions, replacing the names of
// existing codes.
func (s *SQLiteStore) SaveRegions(ctx context.Context, regions []core.Region, subRegions []core.SubRegion) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	for _, r := range regions {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO regions (code, name) VALUES (?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
			r.Code, r.Name,
		); err != nil {
			return fmt.Errorf("failed to save region %s: %w", r.Code, err)
		}
	}
	for _, sr := range subRegions {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO sub_regions (code, name, region_code) VALUES (?, ?, ?)
			 ON CONFLICT(code) DO UPDATE SET name = excluded.name, region_code = excluded.region_code`,
			sr.Code, sr.Name, sr.RegionCode,
		); err != nil {
			return fmt.Errorf("failed to save sub-region %s: %w", sr.Code, err)
		}
	}

	s.logger.Debug("saved regions",
		slog.Int("regions", len(regions)),
		slog.Int("sub_regions", len(subRegions)))
	return nil
}

// ListRegions returns all regions ordered by name.
func (s *SQLiteStore) ListRegions(ctx context.Context) ([]core.Region, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM regions ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var regions []core.Region
	for rows.Next() {
		var r core.Region
		if err := rows.Scan(&r.Code, &r.Name); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}
	return regions, rows.Err()
}

// ListSubRegions returns all sub-regions ordered by name.
func (s *SQLiteStore) ListSubRegions(ctx context.Context) ([]core.SubRegion, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT code, name, region_code FROM sub_regions ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subRegions []core.SubRegion
	for rows.Next() {
		var sr core.SubRegion
		if err := rows.Scan(&sr.Code, &sr.Name, &sr.RegionCode); err != nil {
			return nil, fmt.Errorf("failed to scan sub-region: %w", err)
		}
		subRegions = append(subRegions, sr)
	}
	return subRegions, rows.Err()
}

// ListEntities returns all entities ordered by name.
func (s *SQLiteStore) ListEntities(ctx context.Context) ([]core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryEntities(ctx, `SELECT code, name, region_group FROM entities ORDER BY name ASC`)
}

// GetEntity returns the entity with the given code, or nil if none exists.
func (s *SQLiteStore) GetEntity(ctx context.Context, code string) (*core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var e core.Entity
	err := s.db.QueryRowContext(ctx,
		`SELECT code, name, region_group FROM entities WHERE code = ?`, code,
	).Scan(&e.Code, &e.Name, &e.RegionGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &e, nil
}

// FindEntitiesExact returns entities whose name or code equals the term exactly.
func (s *SQLiteStore) FindEntitiesExact(ctx context.Context, nameOrCode string) ([]core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryEntities(ctx,
		`SELECT code, name, region_group FROM entities WHERE name = ? OR code = ? ORDER BY rowid`,
		nameOrCode, nameOrCode,
	)
}

// FindEntitiesByNameSubstring returns entities whose name contains the term,
// ignoring case. The term is matched literally; '%' and '_' carry no meaning.
func (s *SQLiteStore) FindEntitiesByNameSubstring(ctx context.Context, term string) ([]core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return s.queryEntities(ctx,
		`SELECT code, name, region_group FROM entities WHERE instr(unicode_lower(name), unicode_lower(?)) > 0 ORDER BY rowid`,
		term,
	)
}

func (s *SQLiteStore) queryEntities(ctx context.Context, query string, args ...any) ([]core.Entity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entities []core.Entity
	for rows.Next() {
		var e core.Entity
		if err := rows.Scan(&e.Code, &e.Name, &e.RegionGroup); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entities: %w", err)
	}
	return entities, nil
}

// --- Observation reads ---

// GetObservations returns the entity's observations ordered by period ascending.
func (s *SQLiteStore) GetObservations(ctx context.Context, entityCode string) ([]core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_code, period, value FROM observations WHERE entity_code = ? ORDER BY period ASC, id ASC`,
		entityCode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var observations []core.Observation
	for rows.Next() {
		var o core.Observation
		if err := rows.Scan(&o.ID, &o.EntityCode, &o.Period, &o.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}

	s.logger.Debug("loaded observations",
		slog.String("entity", entityCode),
		slog.Int("count", len(observations)))
	return observations, nil
}

// GetObservation returns the observation with the given id, or nil if none exists.
func (s *SQLiteStore) GetObservation(ctx context.Context, id int64) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var o core.Observation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, entity_code, period, value FROM observations WHERE id = ?`, id,
	).Scan(&o.ID, &o.EntityCode, &o.Period, &o.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return &o, nil
}

// GetMaxPeriod returns the latest period recorded for the entity.
// The boolean is false when the entity has no observations.
func (s *SQLiteStore) GetMaxPeriod(ctx context.Context, entityCode string) (int, bool, error) {
	if s.db == nil {
		return 0, false, fmt.Errorf("database not opened")
	}

	var maxPeriod sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(period) FROM observations WHERE entity_code = ?`, entityCode,
	).Scan(&maxPeriod)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get max period: %w", err)
	}
	if !maxPeriod.Valid {
		return 0, false, nil
	}
	return int(maxPeriod.Int64), true, nil
}

// SearchLatest returns, for every entity whose name contains the keyword,
// its most recent observation. Results are ordered by value descending.
func (s *SQLiteStore) SearchLatest(ctx context.Context, keyword string) ([]core.LatestObservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM entities e
		JOIN observations o ON o.entity_code = e.code
		WHERE instr(unicode_lower(e.name), unicode_lower(?)) > 0
		  AND o.period = (SELECT MAX(period) FROM observations WHERE entity_code = e.code)
		ORDER BY CAST(o.value AS REAL) DESC, e.name ASC`,
		keyword,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLatest(rows)
}

// ListPeriods returns every distinct period with at least one observation, newest first.
func (s *SQLiteStore) ListPeriods(ctx context.Context) ([]int, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT period FROM observations ORDER BY period DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var periods []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// RankPeriod returns up to limit observations recorded for the period,
// highest values first, or lowest first when ascending is set.
func (s *SQLiteStore) RankPeriod(ctx context.Context, period int, limit int, ascending bool) ([]core.LatestObservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM observations o
		JOIN entities e ON e.code = o.entity_code
		WHERE o.period = ?
		ORDER BY CAST(o.value AS REAL) `+direction+`, e.name ASC
		LIMIT ?`,
		period, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rank period: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLatest(rows)
}

// RankSubRegion returns every observation recorded for the period by an
// entity of the sub-region, highest values first.
func (s *SQLiteStore) RankSubRegion(ctx context.Context, subRegionCode string, period int) ([]core.LatestObservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM observations o
		JOIN entities e ON e.code = o.entity_code
		WHERE e.region_group = ? AND o.period = ?
		ORDER BY CAST(o.value AS REAL) DESC, e.name ASC`,
		subRegionCode, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rank sub-region: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLatest(rows)
}

// MaxShareBySubRegion returns, for each sub-region of the region with data
// for the period, its highest observed value. Results are ordered by that
// value descending. Values are stored as text, so the maximum is taken over
// the scanned decimals.
func (s *SQLiteStore) MaxShareBySubRegion(ctx context.Context, regionCode string, period int) ([]core.SubRegionMax, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sr.code, sr.name, sr.region_code, o.value
		FROM sub_regions sr
		JOIN entities e ON e.region_group = sr.code
		JOIN observations o ON o.entity_code = e.code
		WHERE sr.region_code = ? AND o.period = ?
		ORDER BY sr.code`,
		regionCode, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sub-regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []core.SubRegionMax
	index := make(map[string]int)
	for rows.Next() {
		var sr core.SubRegion
		var value decimal.Decimal
		if err := rows.Scan(&sr.Code, &sr.Name, &sr.RegionCode, &value); err != nil {
			return nil, fmt.Errorf("failed to scan sub-region: %w", err)
		}
		i, ok := index[sr.Code]
		if !ok {
			index[sr.Code] = len(results)
			results = append(results, core.SubRegionMax{SubRegion: sr, Period: period, Value: value})
			continue
		}
		if value.GreaterThan(results[i].Value) {
			results[i].Value = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sub-regions: %w", err)
	}

	slices.SortStableFunc(results, func(a, b core.SubRegionMax) int {
		if c := b.Value.Cmp(a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.SubRegion.Name, b.SubRegion.Name)
	})
	return results, nil
}

func scanLatest(rows *sql.Rows) ([]core.LatestObservation, error) {
	var results []core.LatestObservation
	for rows.Next() {
		var r core.LatestObservation
		if err := rows.Scan(&r.Entity.Code, &r.Entity.Name, &r.Entity.RegionGroup, &r.Period, &r.Value); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return results, nil
}

// --- Observation writes ---

// InsertObservation appends an observation and returns it with its assigned id.
// A second observation for the same entity and period yields core.ErrDuplicatePeriod.
func (s *SQLiteStore) InsertObservation(ctx context.Context, entityCode string, period int, value decimal.Decimal) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO observations (entity_code, period, value) VALUES (?, ?, ?)`,
		entityCode, period, value.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s %d: %w", entityCode, period, core.ErrDuplicatePeriod)
		}
		return nil, fmt.Errorf("failed to insert observation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read observation id: %w", err)
	}

	s.logger.Debug("inserted observation",
		slog.Int64("id", id),
		slog.String("entity", entityCode),
		slog.Int("period", period))

	return &core.Observation{ID: id, EntityCode: entityCode, Period: period, Value: value}, nil
}

// UpdateObservationValue sets the value of an observation and returns the
// row as re-read after the update. It returns nil when no row has the id.
func (s *SQLiteStore) UpdateObservationValue(ctx context.Context, id int64, value decimal.Decimal) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE observations SET value = ? WHERE id = ?`, value.String(), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update observation: %w", err)
	}

	s.logger.Debug("updated observation", slog.Int64("id", id))
	return s.GetObservation(ctx, id)
}

// DeleteObservation removes one observation. It reports whether a row was removed.
func (s *SQLiteStore) DeleteObservation(ctx context.Context, id int64) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete observation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	s.logger.Debug("deleted observation", slog.Int64("id", id), slog.Int64("affected", affected))
	return affected > 0, nil
}

// DeleteObservationRange removes the entity's observations with periods in
// [startPeriod, endPeriod] and returns how many rows were removed.
func (s *SQLiteStore) DeleteObservationRange(ctx context.Context, entityCode string, startPeriod, endPeriod int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM observations WHERE entity_code = ? AND period BETWEEN ? AND ?`,
		entityCode, startPeriod, endPeriod,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete observations: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	s.logger.Debug("deleted observation range",
		slog.String("entity", entityCode),
		slog.Int("start", startPeriod),
		slog.Int("end", endPeriod),
		slog.Int64("affected", affected))
	return affected, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
