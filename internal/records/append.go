package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/incomeshare/internal/metrics"
	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// Appender extends an entity's series by one period: Prepare proposes the
// next period, Confirm writes it.
type Appender struct {
	store    core.EntityStore
	resolver *Resolver
	advancer *Advancer
	logger   *slog.Logger
}

// NewAppender creates an appender. If logger is nil, a discard logger is used.
func NewAppender(store core.EntityStore, resolver *Resolver, advancer *Advancer, logger *slog.Logger) *Appender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Appender{store: store, resolver: resolver, advancer: advancer, logger: logger}
}

// Prepare resolves the input and returns an append form for the entity's
// next period. Resolution failures become an error fragment and notice.
func (a *Appender) Prepare(ctx context.Context, input string) Response {
	entity, err := a.resolver.Resolve(ctx, input)
	if err != nil {
		return appendFailure(ResolutionMessage(err))
	}

	period, err := a.advancer.NextPeriod(ctx, entity.Code)
	if err != nil {
		a.logger.Warn("next period failed", slog.String("entity", entity.Code), slog.String("error", err.Error()))
		return appendFailure("Error: " + err.Error())
	}

	return Response{Primary: Fragment{
		Region: RegionAppendArea,
		Kind:   KindAppendForm,
		Entity: &entity,
		Period: period,
	}}
}

// Confirm inserts the observation proposed by Prepare.
func (a *Appender) Confirm(ctx context.Context, entityCode string, period int, input string) Response {
	value, err := ParseValue(input)
	if err != nil {
		return appendFailure("Value must be a number.")
	}

	entity, err := a.store.GetEntity(ctx, entityCode)
	if err != nil {
		return appendFailure("Error: " + err.Error())
	}
	if entity == nil {
		return appendFailure(fmt.Sprintf("Unknown entity %q.", entityCode))
	}

	o, err := a.store.InsertObservation(ctx, entity.Code, period, value)
	if errors.Is(err, core.ErrDuplicatePeriod) {
		metrics.ObserveMutation("insert", "duplicate")
		return appendFailure(fmt.Sprintf("Period %d already recorded for %s.", period, entity.Code))
	}
	if err != nil {
		metrics.ObserveMutation("insert", "error")
		a.logger.Warn("insert failed", slog.String("entity", entity.Code), slog.String("error", err.Error()))
		return appendFailure("Error: " + err.Error())
	}
	metrics.ObserveMutation("insert", "ok")

	return Response{
		Primary: Fragment{
			Region:      RegionAppendArea,
			Kind:        KindStatus,
			Entity:      entity,
			Observation: o,
			Message:     fmt.Sprintf("Saved %s for period %d.", o.ValueLabel(), o.Period),
		},
		Notice: successNotice("Added record for %d", o.Period),
	}
}

func appendFailure(message string) Response {
	return Response{
		Primary: errorFragment(RegionAppendArea, "", message),
		Notice:  errorNotice(message),
	}
}
