package recon

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/carelink/carelink/internal/platform/docstore"
	"github.com/carelink/carelink/internal/platform/telemetry"
)

// LookupSpec describes one best-effort secondary lookup: read the foreign
// key off the primary record, fetch Collection/{id}, and store the result
// under As. AltCollection, when set, is retried once if the first lookup
// returns no document (the patient-profile case, where older records live
// under a legacy path).
type LookupSpec struct {
	As            string
	Field         string
	Collection    string
	AltCollection string
}

// Enricher performs cross-reference lookups against the document store.
// Lookups within one pass run concurrently; an individual failure degrades
// to a nil entry and is logged, never surfaced, because the caller must
// render with partial data rather than fail entirely.
type Enricher struct {
	store   docstore.Client
	log     zerolog.Logger
	timeout time.Duration
}

func NewEnricher(store docstore.Client, logger zerolog.Logger, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{
		store:   store,
		log:     logger.With().Str("component", "enricher").Logger(),
		timeout: timeout,
	}
}

// Enrich runs all independent lookups for one pass concurrently and returns
// whatever resolved, keyed by each spec's As name. Every spec has an entry
// in the result; a missing foreign key, an absent document, a read error,
// or a timeout all yield nil for that entry only. The whole pass is bounded
// by the enricher's timeout.
func (e *Enricher) Enrich(ctx context.Context, primary docstore.Document, specs []LookupSpec) map[string]docstore.Document {
	start := time.Now()
	defer func() { telemetry.RecordEnrichmentPass(time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	results := make([]docstore.Document, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		id := Resolve(primary, []string{spec.Field}, "")
		if id == "" {
			continue
		}
		g.Go(func() error {
			results[i] = e.fetch(gctx, spec, id)
			return nil
		})
	}
	// Goroutines never return errors; Wait only synchronizes the fan-in.
	_ = g.Wait()

	merged := make(map[string]docstore.Document, len(specs))
	for i, spec := range specs {
		merged[spec.As] = results[i]
	}
	return merged
}

func (e *Enricher) fetch(ctx context.Context, spec LookupSpec, id string) docstore.Document {
	doc := e.get(ctx, spec.Collection, id)
	if doc == nil && spec.AltCollection != "" {
		doc = e.get(ctx, spec.AltCollection, id)
	}
	return doc
}

// Follow performs one dependent lookup: it reads a foreign key off an
// already-fetched document and resolves it, sequentially, with the same
// best-effort semantics as Enrich. Used when a later lookup's key only
// exists inside an earlier lookup's result.
func (e *Enricher) Follow(ctx context.Context, doc docstore.Document, field, collection string) docstore.Document {
	id := Resolve(doc, []string{field}, "")
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.get(ctx, collection, id)
}

func (e *Enricher) get(ctx context.Context, collection, id string) docstore.Document {
	doc, err := e.store.GetDocument(ctx, docstore.JoinPath(collection, id))
	if err != nil {
		outcome := telemetry.OutcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = telemetry.OutcomeTimeout
		}
		telemetry.RecordLookup(collection, outcome)
		e.log.Warn().Err(err).
			Str("collection", collection).
			Str("id", id).
			Msg("lookup failed, degrading to nil")
		return nil
	}
	if doc == nil {
		telemetry.RecordLookup(collection, telemetry.OutcomeMiss)
		return nil
	}
	telemetry.RecordLookup(collection, telemetry.OutcomeHit)
	return doc
}
