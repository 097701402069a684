// Package records implements the interactive record-reconciliation layer:
// resolving free text to an entity, deriving the next period of a series,
// the per-row read-only/editing state machine, and list-synchronised
// responses for mutations that change which rows exist.
//
// Every operation returns data (Fragment, Response) rather than markup.
// Failures are converted to fragments or notices at the operation boundary.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/incomeshare/internal/metrics"
	"github.com/leapstack-labs/incomeshare/pkg/core"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions bounds the "did you mean" list on NotFound.
const maxSuggestions = 3

// Resolver turns free-text input into exactly one entity.
type Resolver struct {
	store  core.EntityStore
	logger *slog.Logger
}

// NewResolver creates a resolver over the given store.
// If logger is nil, a discard logger is used.
func NewResolver(store core.EntityStore, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the entity the input names. An exact name or code match
// wins outright; otherwise a single case-insensitive name containment match
// is accepted. It never picks among several candidates.
//
// Failures are *ResolutionError, or a wrapped store error.
func (r *Resolver) Resolve(ctx context.Context, input string) (core.Entity, error) {
	entity, err := r.resolve(ctx, input)

	var resErr *ResolutionError
	switch {
	case err == nil:
		metrics.ObserveResolution("resolved")
	case errors.As(err, &resErr):
		metrics.ObserveResolution(resErr.Kind.String())
	default:
		metrics.ObserveResolution("error")
		r.logger.Warn("entity resolution failed", slog.String("input", input), slog.String("error", err.Error()))
	}
	return entity, err
}

func (r *Resolver) resolve(ctx context.Context, input string) (core.Entity, error) {
	term := strings.TrimSpace(input)
	if term == "" {
		return core.Entity{}, &ResolutionError{Kind: EmptyInput, Input: input}
	}

	exact, err := r.store.FindEntitiesExact(ctx, term)
	if err != nil {
		return core.Entity{}, fmt.Errorf("exact lookup: %w", err)
	}
	if len(exact) == 1 {
		r.logger.Debug("resolved exact", slog.String("input", term), slog.String("code", exact[0].Code))
		return exact[0], nil
	}

	partial, err := r.store.FindEntitiesByNameSubstring(ctx, term)
	if err != nil {
		return core.Entity{}, fmt.Errorf("partial lookup: %w", err)
	}

	switch len(partial) {
	case 0:
		return core.Entity{}, &ResolutionError{
			Kind:        NotFound,
			Input:       term,
			Suggestions: r.suggest(ctx, term),
		}
	case 1:
		r.logger.Debug("resolved partial", slog.String("input", term), slog.String("code", partial[0].Code))
		return partial[0], nil
	default:
		return core.Entity{}, &ResolutionError{
			Kind:    Ambiguous,
			Input:   term,
			Count:   len(partial),
			Example: partial[0].Name,
		}
	}
}

// suggest ranks entity names that contain the term's characters in order.
// Lookup failures only cost the suggestions.
func (r *Resolver) suggest(ctx context.Context, term string) []string {
	entities, err := r.store.ListEntities(ctx)
	if err != nil {
		r.logger.Debug("suggestions unavailable", slog.String("error", err.Error()))
		return nil
	}

	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(term, names)
	sort.Sort(ranks)

	var suggestions []string
	for _, rank := range ranks {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, rank.Target)
	}
	return suggestions
}
