package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvancer_NextPeriod(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name     string
		baseline int
		code     string
		want     int
	}{
		{name: "after latest", code: "USA", want: 2021},
		{name: "after latest of longer series", code: "FRA", want: 2019},
		{name: "empty series uses default baseline", code: "DEU", want: DefaultBaselinePeriod},
		{name: "empty series uses configured baseline", baseline: 1990, code: "DEU", want: 1990},
		{name: "configured baseline ignored with data", baseline: 1990, code: "USA", want: 2021},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAdvancer(store, tt.baseline).NextPeriod(context.Background(), tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdvancer_Baseline(t *testing.T) {
	assert.Equal(t, DefaultBaselinePeriod, NewAdvancer(nil, 0).Baseline())
	assert.Equal(t, DefaultBaselinePeriod, NewAdvancer(nil, -5).Baseline())
	assert.Equal(t, 2000, NewAdvancer(nil, 2000).Baseline())
}

func TestAdvancer_StoreFailure(t *testing.T) {
	store := &faultyStore{EntityStore: newTestStore(t), failMaxPeriod: true}
	_, err := NewAdvancer(store, 0).NextPeriod(context.Background(), "USA")
	assert.ErrorIs(t, err, errStoreDown)
}
