package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEntityLabel(t *testing.T) {
	e := Entity{Code: "FRA", Name: "France", RegionGroup: "155"}
	assert.Equal(t, "France (FRA)", e.Label())
}

func TestObservationValueLabel(t *testing.T) {
	tests := []struct {
		name  string
		value decimal.Decimal
		want  string
	}{
		{"one decimal", decimal.RequireFromString("20.5"), "20.5%"},
		{"integer", decimal.NewFromInt(12), "12%"},
		{"trailing zero dropped", decimal.RequireFromString("9.10"), "9.1%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Observation{Value: tt.value}
			assert.Equal(t, tt.want, o.ValueLabel())
		})
	}
}

func TestSubRegionMaxValueLabel(t *testing.T) {
	m := SubRegionMax{SubRegion: SubRegion{Code: "155", Name: "Western Europe", RegionCode: "150"}, Value: decimal.RequireFromString("11.80")}
	assert.Equal(t, "11.8%", m.ValueLabel())
}
