package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObservationsCommand(t *testing.T) {
	cmd := NewObservationsCommand()

	assert.Equal(t, "observations", cmd.Use)
	assert.Contains(t, cmd.Aliases, "obs")

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "next", "add", "set", "rm", "rm-range"}, names)
}

func TestNewRegionsCommand(t *testing.T) {
	cmd := NewRegionsCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "rank", "max"}, names)
}

func TestNewObservationsAddCommand(t *testing.T) {
	cmd := newObservationsAddCommand()

	assert.Equal(t, "add <country> <value>", cmd.Use)
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("period"))
}

func TestNewUICommand(t *testing.T) {
	cmd := NewUICommand()

	assert.Equal(t, "ui", cmd.Use)
	assert.Contains(t, cmd.Aliases, "serve")
	for _, flag := range []string{"port", "no-browser", "dev"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewSeedCommand(t *testing.T) {
	cmd := NewSeedCommand()

	assert.Equal(t, "seed [file]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "incomeshare v1.2.3")
}

func TestParseID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "7", want: 7},
		{input: "0", wantErr: true},
		{input: "-3", wantErr: true},
		{input: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, err := parseID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	period, err := parsePeriod("2020")
	require.NoError(t, err)
	assert.Equal(t, 2020, period)

	_, err = parsePeriod("20.5")
	assert.EqualError(t, err, `year "20.5" is not a whole number`)
}

func TestRenderer(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := NewRenderer(buf, "table")
		require.NoError(t, r.Render(nil, []string{"Code", "Name"}, [][]string{{"USA", "United States of America"}}))

		out := buf.String()
		assert.Contains(t, out, "CODE")
		assert.Contains(t, out, "United States of America")
		assert.Contains(t, out, "(1 rows)")
	})

	t.Run("empty table", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, NewRenderer(buf, "").Render(nil, []string{"Code"}, nil))
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := new(bytes.Buffer)
		r := NewRenderer(buf, "json")
		assert.True(t, r.JSON())
		require.NoError(t, r.Message(map[string]int{"deleted": 2}, "Deleted %d records.", 2))
		assert.JSONEq(t, `{"deleted": 2}`, buf.String())
	})

	t.Run("message", func(t *testing.T) {
		buf := new(bytes.Buffer)
		require.NoError(t, NewRenderer(buf, "table").Message(nil, "Deleted %d records.", 2))
		assert.Equal(t, "Deleted 2 records.\n", buf.String())
	})
}
