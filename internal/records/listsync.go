package records

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/incomeshare/internal/metrics"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// ListSync answers mutations that change which rows a list shows, keeping
// the status region and the list region consistent in one response.
type ListSync struct {
	store  core.EntityStore
	logger *slog.Logger
}

// NewListSync creates a list-sync responder. If logger is nil, a discard
// logger is used.
func NewListSync(store core.EntityStore, logger *slog.Logger) *ListSync {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ListSync{store: store, logger: logger}
}

// List reads the entity's observations and returns the list fragment for
// the given list kind. A failed read becomes an error fragment in the list region.
func (l *ListSync) List(ctx context.Context, kind ListKind, entityCode string) Fragment {
	region := ListRegion(kind)

	entity, err := l.store.GetEntity(ctx, entityCode)
	if err != nil {
		l.logger.Warn("list entity lookup failed", slog.String("entity", entityCode), slog.String("error", err.Error()))
		return errorFragment(region, kind, "Error loading list: "+err.Error())
	}
	if entity == nil {
		return errorFragment(region, kind, fmt.Sprintf("Unknown entity %q.", entityCode))
	}

	observations, err := l.store.GetObservations(ctx, entityCode)
	if err != nil {
		l.logger.Warn("list read failed", slog.String("entity", entityCode), slog.String("error", err.Error()))
		return errorFragment(region, kind, "Error loading list: "+err.Error())
	}

	return Fragment{
		Region:       region,
		Kind:         KindList,
		List:         kind,
		Entity:       entity,
		Observations: observations,
	}
}

// RespondAfterMutation builds a response whose primary payload is the
// status message and whose out-of-band payload is the delete list of the
// entity, read fresh after the mutation.
func (l *ListSync) RespondAfterMutation(ctx context.Context, status string, listEntityCode string) Response {
	return Response{
		Primary:   Fragment{Region: RegionDeleteStatus, Kind: KindStatus, List: ListDelete, Message: status},
		OutOfBand: []Fragment{l.List(ctx, ListDelete, listEntityCode)},
	}
}

// DeleteRow removes a single observation. The primary payload is an empty
// fragment for the row's own region, which removes the row. A row already
// deleted elsewhere is removed the same way with an informational notice.
func (l *ListSync) DeleteRow(ctx context.Context, id int64) Response {
	region := RowRegion(ListDelete, id)

	deleted, err := l.store.DeleteObservation(ctx, id)
	if err != nil {
		metrics.ObserveMutation("delete", "error")
		l.logger.Warn("delete failed", slog.Int64("id", id), slog.String("error", err.Error()))
		return Response{
			Primary: errorFragment(region, ListDelete, "Error: "+err.Error()),
			Notice:  errorNotice("Delete failed."),
		}
	}

	empty := Fragment{Region: region, Kind: KindEmpty, List: ListDelete}
	if !deleted {
		metrics.ObserveMutation("delete", "vanished")
		return Response{Primary: empty, Notice: infoNotice("Record was already deleted.")}
	}

	metrics.ObserveMutation("delete", "ok")
	return Response{Primary: empty, Notice: successNotice("Record deleted.")}
}

// DeleteRange removes the entity's observations in [startPeriod, endPeriod]
// and returns the count in the status region with the remaining list
// out of band. When the mutation itself fails, only the status region is
// touched.
func (l *ListSync) DeleteRange(ctx context.Context, entityCode string, startPeriod, endPeriod int) Response {
	statusError := func(message string) Response {
		return Response{
			Primary: errorFragment(RegionDeleteStatus, ListDelete, message),
			Notice:  errorNotice(message),
		}
	}

	entityCode = strings.TrimSpace(entityCode)
	if entityCode == "" {
		return statusError("Select a country first.")
	}
	if startPeriod > endPeriod {
		return statusError(fmt.Sprintf("Start period %d is after end period %d.", startPeriod, endPeriod))
	}

	affected, err := l.store.DeleteObservationRange(ctx, entityCode, startPeriod, endPeriod)
	if err != nil {
		metrics.ObserveMutation("delete_range", "error")
		l.logger.Warn("range delete failed",
			slog.String("entity", entityCode),
			slog.Int("start", startPeriod),
			slog.Int("end", endPeriod),
			slog.String("error", err.Error()))
		return statusError("Error: " + err.Error())
	}
	metrics.ObserveMutation("delete_range", "ok")

	status := fmt.Sprintf("Deleted %d records.", affected)
	resp := l.RespondAfterMutation(ctx, status, entityCode)
	resp.Notice = successNotice("%s", status)
	return resp
}
