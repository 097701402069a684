package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/incomeshare/internal/metrics"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/shopspring/decimal"
)

// RowState is the presentation state of one observation row.
type RowState int

// Row states. Every row starts ReadOnly.
const (
	ReadOnly RowState = iota
	Editing
)

func (s RowState) String() string {
	if s == Editing {
		return "editing"
	}
	return "read-only"
}

// RowEvent is a user action or commit outcome applied to a row.
type RowEvent int

// Row events.
const (
	ActivateEdit RowEvent = iota
	SaveSucceeded
	SaveFailed
	Cancel
)

var rowEventNames = [...]string{"activate-edit", "save-succeeded", "save-failed", "cancel"}

func (e RowEvent) String() string {
	if int(e) < len(rowEventNames) {
		return rowEventNames[e]
	}
	return "unknown"
}

// ErrInvalidTransition is returned by Transition for events the state
// does not accept.
var ErrInvalidTransition = errors.New("invalid row transition")

// Transition applies an event to a row state.
//
//	ReadOnly --ActivateEdit--> Editing
//	Editing  --SaveSucceeded--> ReadOnly
//	Editing  --SaveFailed----> Editing
//	Editing  --Cancel--------> ReadOnly
func Transition(state RowState, event RowEvent) (RowState, error) {
	switch {
	case state == ReadOnly && event == ActivateEdit:
		return Editing, nil
	case state == Editing && (event == SaveSucceeded || event == Cancel):
		return ReadOnly, nil
	case state == Editing && event == SaveFailed:
		return Editing, nil
	default:
		return state, fmt.Errorf("%w: %s on %s row", ErrInvalidTransition, event, state)
	}
}

// maxValue bounds the magnitude of a measurement. Inputs beyond it, such as
// 1e400, would not survive a float conversion.
var maxValue = decimal.New(1, 15)

// ParseValue coerces user input to a measurement. A trailing "%" is allowed.
func ParseValue(input string) (decimal.Decimal, error) {
	s := strings.TrimSuffix(strings.TrimSpace(input), "%")
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("value %q is not a number", input)
	}
	if v.Abs().GreaterThanOrEqual(maxValue) {
		return decimal.Decimal{}, fmt.Errorf("value %q is out of range", input)
	}
	return v, nil
}

// RenderReadOnly returns the read-only fragment of an edit-list row.
func RenderReadOnly(o core.Observation) Fragment {
	return Fragment{
		Region:      RowRegion(ListEdit, o.ID),
		Kind:        KindReadOnlyRow,
		List:        ListEdit,
		Observation: &o,
	}
}

// RenderEditing returns the editing fragment of an edit-list row, its
// input pre-populated with the current value.
func RenderEditing(o core.Observation) Fragment {
	return Fragment{
		Region:      RowRegion(ListEdit, o.ID),
		Kind:        KindEditingRow,
		List:        ListEdit,
		Observation: &o,
		Input:       o.Value.String(),
	}
}

// render returns the fragment for an observation in the given state.
func render(state RowState, o core.Observation) Fragment {
	if state == Editing {
		return RenderEditing(o)
	}
	return RenderReadOnly(o)
}

// Rows drives the edit-list row state machine against the store.
// No row state is held between calls; every call derives it from the request.
type Rows struct {
	store  core.EntityStore
	logger *slog.Logger
}

// NewRows creates a row renderer. If logger is nil, a discard logger is used.
func NewRows(store core.EntityStore, logger *slog.Logger) *Rows {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Rows{store: store, logger: logger}
}

// Editing handles ActivateEdit: the row with the given id as an editing fragment.
func (r *Rows) Editing(ctx context.Context, id int64) Response {
	return r.transitionFromStore(ctx, id, ReadOnly, ActivateEdit)
}

// ReadOnly handles Cancel: a fresh read-only fragment, discarding unsaved input.
// A row deleted meanwhile is removed from the list.
func (r *Rows) ReadOnly(ctx context.Context, id int64) Response {
	return r.transitionFromStore(ctx, id, Editing, Cancel)
}

func (r *Rows) transitionFromStore(ctx context.Context, id int64, from RowState, event RowEvent) Response {
	region := RowRegion(ListEdit, id)

	next, err := Transition(from, event)
	if err != nil {
		return Response{Primary: errorFragment(region, ListEdit, err.Error())}
	}

	o, err := r.store.GetObservation(ctx, id)
	if err != nil {
		r.logger.Warn("row lookup failed", slog.Int64("id", id), slog.String("error", err.Error()))
		return Response{Primary: errorFragment(region, ListEdit, "Could not load record: "+err.Error())}
	}
	if o == nil {
		if event == Cancel {
			return Response{
				Primary: Fragment{Region: region, Kind: KindEmpty, List: ListEdit},
				Notice:  infoNotice("Record no longer exists."),
			}
		}
		return Response{Primary: errorFragment(region, ListEdit, "Record not found.")}
	}

	return Response{Primary: render(next, *o)}
}

// Commit persists a new value for the observation and returns the row as
// re-read afterwards. Failures are *CommitError.
func (r *Rows) Commit(ctx context.Context, id int64, value decimal.Decimal) (core.Observation, error) {
	o, err := r.store.UpdateObservationValue(ctx, id, value)
	if err != nil {
		metrics.ObserveMutation("update", "error")
		return core.Observation{}, &CommitError{Kind: StoreUnavailable, ID: id, Err: err}
	}
	if o == nil {
		metrics.ObserveMutation("update", "vanished")
		return core.Observation{}, &CommitError{Kind: RecordVanished, ID: id}
	}

	metrics.ObserveMutation("update", "ok")
	r.logger.Debug("committed value", slog.Int64("id", id), slog.String("value", o.Value.String()))
	return *o, nil
}

// Edit is a Save request from an editing row. Period is display context
// echoed back so a failed save can re-render the row without a store read.
type Edit struct {
	ID     int64
	Period int
	Input  string
}

// CommitResponse handles Save: a read-only row on success, the editing row
// with an annotation when the value or the store is rejected, and an error
// fragment in the row's place when the record has vanished.
func (r *Rows) CommitResponse(ctx context.Context, edit Edit) Response {
	region := RowRegion(ListEdit, edit.ID)
	failed := func(annotation string) Response {
		state, _ := Transition(Editing, SaveFailed)
		frag := render(state, core.Observation{ID: edit.ID, Period: edit.Period})
		frag.Input = edit.Input
		frag.Annotation = annotation
		return Response{Primary: frag, Notice: errorNotice(annotation)}
	}

	value, err := ParseValue(edit.Input)
	if err != nil {
		return failed("Value must be a number.")
	}

	o, err := r.Commit(ctx, edit.ID, value)
	if err != nil {
		var commitErr *CommitError
		if errors.As(err, &commitErr) && commitErr.Kind == RecordVanished {
			return Response{
				Primary: errorFragment(region, ListEdit, "This record was deleted before the update was saved."),
				Notice:  errorNotice("Update failed: record no longer exists."),
			}
		}
		r.logger.Warn("commit failed", slog.Int64("id", edit.ID), slog.String("error", err.Error()))
		return failed("Update failed: " + err.Error())
	}

	state, _ := Transition(Editing, SaveSucceeded)
	return Response{
		Primary: render(state, o),
		Notice:  successNotice("Updated %d to %s", o.Period, o.ValueLabel()),
	}
}
