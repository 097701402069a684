package records

import (
	"context"
	"testing"

	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppender(store core.EntityStore) *Appender {
	return NewAppender(store, NewResolver(store, nil), NewAdvancer(store, 0), nil)
}

func TestAppender_Prepare(t *testing.T) {
	store := newTestStore(t)
	a := newTestAppender(store)
	ctx := context.Background()

	tests := []struct {
		name       string
		input      string
		wantKind   FragmentKind
		wantCode   string
		wantPeriod int
		wantText   string
	}{
		{name: "next after latest", input: "USA", wantKind: KindAppendForm, wantCode: "USA", wantPeriod: 2021},
		{name: "partial name", input: "germ", wantKind: KindAppendForm, wantCode: "DEU", wantPeriod: DefaultBaselinePeriod},
		{
			name:     "ambiguous",
			input:    "United",
			wantKind: KindError,
			wantText: `Ambiguous search "United". Found 2 matches (e.g., United States of America). Please be more specific.`,
		},
		{name: "empty", input: "", wantKind: KindError, wantText: "Input is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := a.Prepare(ctx, tt.input)
			assert.Equal(t, RegionAppendArea, resp.Primary.Region)
			assert.Equal(t, tt.wantKind, resp.Primary.Kind)

			if tt.wantKind == KindAppendForm {
				require.NotNil(t, resp.Primary.Entity)
				assert.Equal(t, tt.wantCode, resp.Primary.Entity.Code)
				assert.Equal(t, tt.wantPeriod, resp.Primary.Period)
				assert.Nil(t, resp.Notice)
				return
			}
			assert.Equal(t, tt.wantText, resp.Primary.Message)
			require.NotNil(t, resp.Notice)
			assert.Equal(t, NoticeError, resp.Notice.Kind)
		})
	}
}

func TestAppender_Confirm(t *testing.T) {
	t.Run("saved", func(t *testing.T) {
		store := newTestStore(t)
		resp := newTestAppender(store).Confirm(context.Background(), "USA", 2021, "21.3")

		assert.Equal(t, KindStatus, resp.Primary.Kind)
		assert.Equal(t, "Saved 21.3% for period 2021.", resp.Primary.Message)
		require.NotNil(t, resp.Notice)
		assert.Equal(t, "Added record for 2021", resp.Notice.Text)

		next, err := NewAdvancer(store, 0).NextPeriod(context.Background(), "USA")
		require.NoError(t, err)
		assert.Equal(t, 2022, next)
	})

	t.Run("duplicate period", func(t *testing.T) {
		resp := newTestAppender(newTestStore(t)).Confirm(context.Background(), "USA", 2020, "1")
		assert.Equal(t, KindError, resp.Primary.Kind)
		assert.Equal(t, "Period 2020 already recorded for USA.", resp.Primary.Message)
	})

	t.Run("unknown entity", func(t *testing.T) {
		resp := newTestAppender(newTestStore(t)).Confirm(context.Background(), "XXX", 2020, "1")
		assert.Equal(t, KindError, resp.Primary.Kind)
		assert.Equal(t, `Unknown entity "XXX".`, resp.Primary.Message)
	})

	t.Run("not a number", func(t *testing.T) {
		resp := newTestAppender(newTestStore(t)).Confirm(context.Background(), "USA", 2021, "x")
		assert.Equal(t, "Value must be a number.", resp.Primary.Message)
	})

	t.Run("out of range", func(t *testing.T) {
		store := newTestStore(t)
		resp := newTestAppender(store).Confirm(context.Background(), "USA", 2021, "1e400")
		assert.Equal(t, KindError, resp.Primary.Kind)
		assert.Equal(t, "Value must be a number.", resp.Primary.Message)

		observations, err := store.GetObservations(context.Background(), "USA")
		require.NoError(t, err)
		assert.Len(t, observations, 2)
	})
}
