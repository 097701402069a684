// Package postgres provides a PostgreSQL-backed entity and observation store.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrations embed.FS

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ core.Store = (*Store)(nil)

// Config holds PostgreSQL connection settings.
// DSN, when set, takes precedence over the individual fields.
type Config struct {
	DSN      string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// Store implements core.Store for PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New wraps an existing database handle.
// If logger is nil, a discard logger is used.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, logger: logger}
}

// Open establishes a connection to PostgreSQL.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	s := New(nil, logger)

	s.logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.db = db
	return s, nil
}

// buildDSN constructs a PostgreSQL connection string.
func buildDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs all pending database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database connection not established")
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SaveEntities upserts entities by code.
func (s *Store) SaveEntities(ctx context.Context, entities []core.Entity) error {
	if s.db == nil {
		return fmt.Errorf("database connection not established")
	}

	for _, e := range entities {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO entities (code, name, region_group) VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, region_group = EXCLUDED.region_group`,
			e.Code, e.Name, e.RegionGroup,
		)
		if err != nil {
			return fmt.Errorf("failed to save entity %s: %w", e.Code, err)
		}
	}
	return nil
}

// SaveRegions upserts regions and sub-regions by code.
func (s *Store) SaveRegions(ctx context.Context, regions []core.Region, subRegions []core.SubRegion) error {
	if s.db == nil {
		return fmt.Errorf("database connection not established")
	}

	for _, r := range regions {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO regions (code, name) VALUES ($1, $2)
			 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`,
			r.Code, r.Name,
		); err != nil {
			return fmt.Errorf("failed to save region %s: %w", r.Code, err)
		}
	}
	for _, sr := range subRegions {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO sub_regions (code, name, region_code) VALUES ($1, $2, $3)
			 ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, region_code = EXCLUDED.region_code`,
			sr.Code, sr.Name, sr.RegionCode,
		); err != nil {
			return fmt.Errorf("failed to save sub-region %s: %w", sr.Code, err)
		}
	}
	return nil
}

// ListRegions returns all regions ordered by name.
func (s *Store) ListRegions(ctx context.Context) ([]core.Region, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
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
func (s *Store) ListSubRegions(ctx context.Context) ([]core.SubRegion, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
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
func (s *Store) ListEntities(ctx context.Context) ([]core.Entity, error) {
	return s.queryEntities(ctx, `SELECT code, name, region_group FROM entities ORDER BY name ASC`)
}

// GetEntity returns the entity with the given code, or nil.
func (s *Store) GetEntity(ctx context.Context, code string) (*core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	var e core.Entity
	err := s.db.QueryRowContext(ctx,
		`SELECT code, name, region_group FROM entities WHERE code = $1`, code,
	).Scan(&e.Code, &e.Name, &e.RegionGroup)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &e, nil
}

// FindEntitiesExact returns entities whose name or code equals the term.
func (s *Store) FindEntitiesExact(ctx context.Context, nameOrCode string) ([]core.Entity, error) {
	return s.queryEntities(ctx,
		`SELECT code, name, region_group FROM entities WHERE name = $1 OR code = $1 ORDER BY seq`,
		nameOrCode,
	)
}

// FindEntitiesByNameSubstring returns entities whose name contains the term, ignoring case.
func (s *Store) FindEntitiesByNameSubstring(ctx context.Context, term string) ([]core.Entity, error) {
	return s.queryEntities(ctx,
		`SELECT code, name, region_group FROM entities WHERE position(lower($1) in lower(name)) > 0 ORDER BY seq`,
		term,
	)
}

func (s *Store) queryEntities(ctx context.Context, query string, args ...any) ([]core.Entity, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

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

// GetObservations returns the entity's observations ordered by period.
func (s *Store) GetObservations(ctx context.Context, entityCode string) ([]core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_code, period, value FROM observations WHERE entity_code = $1 ORDER BY period ASC, id ASC`,
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
	return observations, nil
}

// GetObservation returns the observation with the given id, or nil.
func (s *Store) GetObservation(ctx context.Context, id int64) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	var o core.Observation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, entity_code, period, value FROM observations WHERE id = $1`, id,
	).Scan(&o.ID, &o.EntityCode, &o.Period, &o.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get observation: %w", err)
	}
	return &o, nil
}

// GetMaxPeriod returns the latest recorded period, false when there is none.
func (s *Store) GetMaxPeriod(ctx context.Context, entityCode string) (int, bool, error) {
	if s.db == nil {
		return 0, false, fmt.Errorf("database connection not established")
	}

	var maxPeriod sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(period) FROM observations WHERE entity_code = $1`, entityCode,
	).Scan(&maxPeriod); err != nil {
		return 0, false, fmt.Errorf("failed to get max period: %w", err)
	}
	if !maxPeriod.Valid {
		return 0, false, nil
	}
	return int(maxPeriod.Int64), true, nil
}

// SearchLatest returns each matching entity's most recent observation.
func (s *Store) SearchLatest(ctx context.Context, keyword string) ([]core.LatestObservation, error) {
	return s.queryLatest(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM entities e
		JOIN observations o ON o.entity_code = e.code
		WHERE position(lower($1) in lower(e.name)) > 0
		  AND o.period = (SELECT MAX(period) FROM observations WHERE entity_code = e.code)
		ORDER BY o.value DESC, e.name ASC`,
		keyword,
	)
}

// ListPeriods returns every distinct period, newest first.
func (s *Store) ListPeriods(ctx context.Context) ([]int, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
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

// RankPeriod returns up to limit observations for the period ordered by value.
func (s *Store) RankPeriod(ctx context.Context, period int, limit int, ascending bool) ([]core.LatestObservation, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	return s.queryLatest(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM observations o
		JOIN entities e ON e.code = o.entity_code
		WHERE o.period = $1
		ORDER BY o.value `+direction+`, e.name ASC
		LIMIT $2`,
		period, limit,
	)
}

// RankSubRegion returns the sub-region's observations for the period, highest first.
func (s *Store) RankSubRegion(ctx context.Context, subRegionCode string, period int) ([]core.LatestObservation, error) {
	return s.queryLatest(ctx, `
		SELECT e.code, e.name, e.region_group, o.period, o.value
		FROM observations o
		JOIN entities e ON e.code = o.entity_code
		WHERE e.region_group = $1 AND o.period = $2
		ORDER BY o.value DESC, e.name ASC`,
		subRegionCode, period,
	)
}

// MaxShareBySubRegion returns the highest value per sub-region of the region
// for the period, highest first.
func (s *Store) MaxShareBySubRegion(ctx context.Context, regionCode string, period int) ([]core.SubRegionMax, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sr.code, sr.name, sr.region_code, MAX(o.value) AS max_value
		FROM sub_regions sr
		JOIN entities e ON e.region_group = sr.code
		JOIN observations o ON o.entity_code = e.code
		WHERE sr.region_code = $1 AND o.period = $2
		GROUP BY sr.code, sr.name, sr.region_code
		ORDER BY max_value DESC, sr.name ASC`,
		regionCode, period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sub-regions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []core.SubRegionMax
	for rows.Next() {
		m := core.SubRegionMax{Period: period}
		if err := rows.Scan(&m.SubRegion.Code, &m.SubRegion.Name, &m.SubRegion.RegionCode, &m.Value); err != nil {
			return nil, fmt.Errorf("failed to scan sub-region: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sub-regions: %w", err)
	}
	return results, nil
}

func (s *Store) queryLatest(ctx context.Context, query string, args ...any) ([]core.LatestObservation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

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

// InsertObservation appends an observation. A duplicate (entity, period)
// yields core.ErrDuplicatePeriod.
func (s *Store) InsertObservation(ctx context.Context, entityCode string, period int, value decimal.Decimal) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO observations (entity_code, period, value) VALUES ($1, $2, $3) RETURNING id`,
		entityCode, period, value.String(),
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s %d: %w", entityCode, period, core.ErrDuplicatePeriod)
		}
		return nil, fmt.Errorf("failed to insert observation: %w", err)
	}

	s.logger.Debug("inserted observation", slog.Int64("id", id), slog.String("entity", entityCode))
	return &core.Observation{ID: id, EntityCode: entityCode, Period: period, Value: value}, nil
}

// UpdateObservationValue updates the value, then re-reads the row.
// It returns nil when the row no longer exists.
func (s *Store) UpdateObservationValue(ctx context.Context, id int64, value decimal.Decimal) (*core.Observation, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE observations SET value = $1 WHERE id = $2`, value.String(), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update observation: %w", err)
	}
	return s.GetObservation(ctx, id)
}

// DeleteObservation removes one observation and reports whether it existed.
func (s *Store) DeleteObservation(ctx context.Context, id int64) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database connection not established")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete observation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteObservationRange removes observations in the inclusive period range.
func (s *Store) DeleteObservationRange(ctx context.Context, entityCode string, startPeriod, endPeriod int) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database connection not established")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM observations WHERE entity_code = $1 AND period BETWEEN $2 AND $3`,
		entityCode, startPeriod, endPeriod,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete observations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}
