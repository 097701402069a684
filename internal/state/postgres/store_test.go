package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, nil), mock
}

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Config{Database: "income"},
			want: "host=localhost port=5432 dbname=income sslmode=disable",
		},
		{
			name: "credentials",
			cfg:  Config{Host: "db", Port: 6543, Database: "income", Username: "app", Password: "secret", SSLMode: "require"},
			want: "host=db port=6543 dbname=income sslmode=require user=app password=secret",
		},
		{
			name: "dsn wins",
			cfg:  Config{DSN: "postgres://u@h/d", Host: "ignored"},
			want: "postgres://u@h/d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.cfg))
		})
	}
}

func TestStore_NotConnected(t *testing.T) {
	s := New(nil, nil)
	ctx := context.Background()

	_, err := s.ListEntities(ctx)
	assert.EqualError(t, err, "database connection not established")

	_, err = s.InsertObservation(ctx, "USA", 2021, decimal.NewFromInt(1))
	assert.EqualError(t, err, "database connection not established")

	assert.NoError(t, s.Close())
}

func TestStore_FindEntities(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		call      func(s *Store) ([]core.Entity, error)
		wantCodes []string
		expectErr bool
	}{
		{
			name: "exact",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE name = \$1 OR code = \$1 ORDER BY seq`).
					WithArgs("USA").
					WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_group"}).
						AddRow("USA", "United States of America", "021"))
			},
			call:      func(s *Store) ([]core.Entity, error) { return s.FindEntitiesExact(context.Background(), "USA") },
			wantCodes: []string{"USA"},
		},
		{
			name: "substring",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`position\(lower\(\$1\) in lower\(name\)\) > 0`).
					WithArgs("United").
					WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_group"}).
						AddRow("USA", "United States of America", "021").
						AddRow("GBR", "United Kingdom", "154"))
			},
			call:      func(s *Store) ([]core.Entity, error) { return s.FindEntitiesByNameSubstring(context.Background(), "United") },
			wantCodes: []string{"USA", "GBR"},
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM entities`).WillReturnError(assert.AnError)
			},
			call:      func(s *Store) ([]core.Entity, error) { return s.ListEntities(context.Background()) },
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			entities, err := tt.call(s)
			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				var codes []string
				for _, e := range entities {
					codes = append(codes, e.Code)
				}
				assert.Equal(t, tt.wantCodes, codes)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_GetMaxPeriod(t *testing.T) {
	t.Run("has observations", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT MAX\(period\) FROM observations WHERE entity_code = \$1`).
			WithArgs("USA").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(2020)))

		maxPeriod, ok, err := s.GetMaxPeriod(context.Background(), "USA")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2020, maxPeriod)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("none", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT MAX\(period\)`).
			WithArgs("DEU").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		_, ok, err := s.GetMaxPeriod(context.Background(), "DEU")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_InsertObservation(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantID    int64
		wantDup   bool
		expectErr bool
	}{
		{
			name: "returning id",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO observations .* RETURNING id`).
					WithArgs("USA", 2021, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
			},
			wantID: 7,
		},
		{
			name: "unique violation",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO observations`).
					WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
			},
			expectErr: true,
			wantDup:   true,
		},
		{
			name: "other failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO observations`).WillReturnError(assert.AnError)
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			tt.setupMock(mock)

			o, err := s.InsertObservation(context.Background(), "USA", 2021, decimal.RequireFromString("21.3"))
			if tt.expectErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantDup, errors.Is(err, core.ErrDuplicatePeriod))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, o.ID)
				assert.Equal(t, "21.3", o.Value.String())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_UpdateObservationValue(t *testing.T) {
	t.Run("re-reads row", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE observations SET value = \$1 WHERE id = \$2`).
			WithArgs(sqlmock.AnyArg(), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT id, entity_code, period, value FROM observations WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "entity_code", "period", "value"}).
				AddRow(int64(3), "USA", int64(2020), "20.7"))

		o, err := s.UpdateObservationValue(context.Background(), 3, decimal.RequireFromString("20.7"))
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.Equal(t, 2020, o.Period)
		assert.Equal(t, "20.7", o.Value.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vanished", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`UPDATE observations`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`FROM observations WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "entity_code", "period", "value"}))

		o, err := s.UpdateObservationValue(context.Background(), 42, decimal.NewFromInt(1))
		require.NoError(t, err)
		assert.Nil(t, o)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Deletes(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM observations WHERE id = \$1`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		deleted, err := s.DeleteObservation(context.Background(), 42)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("range", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`DELETE FROM observations WHERE entity_code = \$1 AND period BETWEEN \$2 AND \$3`).
			WithArgs("FRA", 2015, 2017).
			WillReturnResult(sqlmock.NewResult(0, 3))

		affected, err := s.DeleteObservationRange(context.Background(), "FRA", 2015, 2017)
		require.NoError(t, err)
		assert.Equal(t, int64(3), affected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_SearchLatest(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT e.code, e.name, e.region_group, o.period, o.value`).
		WithArgs("united").
		WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_group", "period", "value"}).
			AddRow("USA", "United States of America", "021", int64(2020), "20.5"))

	results, err := s.SearchLatest(context.Background(), "united")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "USA", results[0].Entity.Code)
	assert.Equal(t, "20.5", results[0].Value.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RankPeriod(t *testing.T) {
	tests := []struct {
		name      string
		ascending bool
		wantOrder string
	}{
		{name: "highest first", ascending: false, wantOrder: `ORDER BY o.value DESC`},
		{name: "lowest first", ascending: true, wantOrder: `ORDER BY o.value ASC`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			mock.ExpectQuery(`WHERE o.period = \$1\s+`+tt.wantOrder+`, e.name ASC\s+LIMIT \$2`).
				WithArgs(2020, 5).
				WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_group", "period", "value"}).
					AddRow("USA", "United States of America", "021", int64(2020), "20.5"))

			results, err := s.RankPeriod(context.Background(), 2020, 5, tt.ascending)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, 2020, results[0].Period)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStore_ListPeriods(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT DISTINCT period FROM observations ORDER BY period DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"period"}).AddRow(int64(2020)).AddRow(int64(2019)))

	periods, err := s.ListPeriods(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2019}, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WritesExactDecimalText(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO observations`).
		WithArgs("USA", 2021, "20.12345678901234567").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectExec(`UPDATE observations SET value = \$1`).
		WithArgs("20.12345678901234567", int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM observations WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "entity_code", "period", "value"}).
			AddRow(int64(8), "USA", int64(2021), "20.12345678901234567"))

	value := decimal.RequireFromString("20.12345678901234567")
	_, err := s.InsertObservation(context.Background(), "USA", 2021, value)
	require.NoError(t, err)

	o, err := s.UpdateObservationValue(context.Background(), 8, value)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "20.12345678901234567", o.Value.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Geography(t *testing.T) {
	t.Run("save regions", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectExec(`INSERT INTO regions \(code, name\) VALUES \(\$1, \$2\)`).
			WithArgs("150", "Europe").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO sub_regions \(code, name, region_code\)`).
			WithArgs("155", "Western Europe", "150").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.SaveRegions(context.Background(),
			[]core.Region{{Code: "150", Name: "Europe"}},
			[]core.SubRegion{{Code: "155", Name: "Western Europe", RegionCode: "150"}})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list regions and sub-regions", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT code, name FROM regions ORDER BY name ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"code", "name"}).
				AddRow("019", "Americas").
				AddRow("150", "Europe"))
		mock.ExpectQuery(`SELECT code, name, region_code FROM sub_regions ORDER BY name ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_code"}).
				AddRow("154", "Northern Europe", "150"))

		regions, err := s.ListRegions(context.Background())
		require.NoError(t, err)
		require.Len(t, regions, 2)
		assert.Equal(t, "Americas", regions[0].Name)

		subRegions, err := s.ListSubRegions(context.Background())
		require.NoError(t, err)
		require.Len(t, subRegions, 1)
		assert.Equal(t, "150", subRegions[0].RegionCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rank sub-region", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`WHERE e.region_group = \$1 AND o.period = \$2\s+ORDER BY o.value DESC, e.name ASC`).
			WithArgs("155", 2018).
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_group", "period", "value"}).
				AddRow("FRA", "France", "155", int64(2018), "11.8"))

		results, err := s.RankSubRegion(context.Background(), "155", 2018)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "FRA", results[0].Entity.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("max share by sub-region", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`(?s)MAX\(o.value\) AS max_value\s.*GROUP BY sr.code, sr.name, sr.region_code\s+ORDER BY max_value DESC`).
			WithArgs("150", 2020).
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "region_code", "max_value"}).
				AddRow("154", "Northern Europe", "150", "13.2").
				AddRow("155", "Western Europe", "150", "11.9"))

		results, err := s.MaxShareBySubRegion(context.Background(), "150", 2020)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Northern Europe", results[0].SubRegion.Name)
		assert.Equal(t, 2020, results[0].Period)
		assert.Equal(t, "13.2%", results[0].ValueLabel())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("aggregate failure", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`FROM sub_regions sr`).WillReturnError(assert.AnError)

		_, err := s.MaxShareBySubRegion(context.Background(), "150", 2020)
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
