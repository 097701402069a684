package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"
)

// Number is a signal bound to an input. Browsers send it either as a JSON
// number or a string depending on the input type, so both are accepted.
type Number string

// UnmarshalJSON accepts a JSON string, number, or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("signal is neither string nor number: %s", data)
		}
		*n = Number(num.String())
	}
	return nil
}

// String returns the raw input.
func (n Number) String() string {
	return string(n)
}

// Int parses the input as a whole number.
func (n Number) Int() (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(n)))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", string(n))
	}
	return v, nil
}

// PageSignals is the union of signals the pages declare. Each handler
// reads only the fields its page binds.
type PageSignals struct {
	Code      string            `json:"code"`
	Search    string            `json:"search"`
	Keyword   string            `json:"keyword"`
	Value     Number            `json:"value"`
	Start     Number            `json:"start"`
	End       Number            `json:"end"`
	Period    Number            `json:"period"`
	SubRegion string            `json:"subregion"`
	Region    string            `json:"region"`
	Values    map[string]Number `json:"values"`
}

// ReadPageSignals reads the request's signals. It must run before the SSE
// generator is created because the generator owns the response.
// Requests without signals yield the zero value.
func ReadPageSignals(r *http.Request) (PageSignals, error) {
	var signals PageSignals
	if r.Method != http.MethodGet && r.ContentLength == 0 {
		return signals, nil
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return signals, fmt.Errorf("failed to read signals: %w", err)
	}
	return signals, nil
}
