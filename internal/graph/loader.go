package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	atlaserr "github.com/codeatlas/codeatlas-go/internal/errors"
	"github.com/codeatlas/codeatlas-go/internal/extract"
)

// ErrEmptyExtraction signals that the bundle holds no entities and no
// relationships: the load phase terminates with nothing to do, not a crash
var ErrEmptyExtraction = errors.New("empty extraction: nothing to load")

// LoadStats tracks load counters. Counts reflect attempted writes; failed
// upserts are tallied separately.
type LoadStats struct {
	FileNodes      int
	Nodes          int
	Edges          int
	Calls          int
	ConstraintErrs int
	UpsertErrs     int
	MissingKinds   []string
}

// Loader consumes an aggregated bundle and converges the persisted graph
// toward it with idempotent upserts. The load is best-effort: any single
// write failure is logged and skipped, never aborting the batch. Reloading
// an unchanged bundle leaves node and edge counts unchanged.
type Loader struct {
	client *Client
	logger *slog.Logger
}

// NewLoader creates a graph loader over an open client connection
func NewLoader(client *Client) *Loader {
	return &Loader{
		client: client,
		logger: slog.Default().With("component", "loader"),
	}
}

// Load runs the full protocol: constraints, File pre-creation, entity
// upserts, relationship resolution, CALLS resolution, and post-load
// verification
func (l *Loader) Load(ctx context.Context, bundle *extract.Bundle) (*LoadStats, error) {
	if bundle == nil || bundle.Empty() {
		return nil, ErrEmptyExtraction
	}

	stats := &LoadStats{}

	l.ensureConstraints(ctx, stats)
	l.createFileNodes(ctx, bundle, stats)
	l.upsertEntities(ctx, bundle, stats)
	l.upsertRelationships(ctx, bundle, stats)
	l.upsertCalls(ctx, bundle, stats)
	l.verify(ctx, bundle, stats)

	l.logger.Info("load complete",
		"file_nodes", stats.FileNodes,
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"calls", stats.Calls,
		"constraint_errors", stats.ConstraintErrs,
		"upsert_errors", stats.UpsertErrs,
	)

	return stats, nil
}

// ensureConstraints declares a per-kind uniqueness constraint on name.
// Best-effort: a failure for one kind is logged and the rest proceed.
func (l *Loader) ensureConstraints(ctx context.Context, stats *LoadStats) {
	for _, kind := range extract.Kinds {
		label := string(kind)
		if !isValidIdentifier(label) {
			l.logger.Warn("skipping constraint for invalid label", "kind", label)
			continue
		}
		query := fmt.Sprintf(
			"CREATE CONSTRAINT IF NOT EXISTS FOR (n:%s) REQUIRE n.name IS UNIQUE", label)
		if _, err := l.client.Run(ctx, query, nil); err != nil {
			stats.ConstraintErrs++
			l.logger.Warn("constraint failed", "kind", label,
				"error", atlaserr.ConstraintError(err, label))
		}
	}
}

// createFileNodes pre-creates a File node for every entity scope that looks
// like a path, so later CONTAINS edges have a guaranteed source endpoint
func (l *Loader) createFileNodes(ctx context.Context, bundle *extract.Bundle, stats *LoadStats) {
	seen := make(map[string]bool)
	for _, e := range bundle.Entities.Items() {
		if !strings.Contains(e.Scope, "/") || seen[e.Scope] {
			continue
		}
		seen[e.Scope] = true

		if _, err := l.client.Run(ctx, "MERGE (f:File {name: $name})",
			map[string]any{"name": e.Scope}); err != nil {
			stats.UpsertErrs++
			l.logger.Warn("file node upsert failed", "path", e.Scope, "error", err)
			continue
		}
		stats.FileNodes++
	}
}

// upsertEntities merges every entity as a node of its kind keyed by
// {name, file}
func (l *Loader) upsertEntities(ctx context.Context, bundle *extract.Bundle, stats *LoadStats) {
	for _, e := range bundle.Entities.Items() {
		builder := NewCypherBuilder()
		query, err := builder.BuildMergeNode(string(e.Kind),
			map[string]any{"name": e.Name, "file": e.Scope},
			[]string{"name", "file"})
		if err != nil {
			stats.UpsertErrs++
			l.logger.Warn("node query build failed", "entity", e, "error", err)
			continue
		}
		if _, err := l.client.Run(ctx, query, builder.Params()); err != nil {
			stats.UpsertErrs++
			l.logger.Warn("node upsert failed", "entity", e,
				"error", atlaserr.UpsertError(err, e.Name))
			continue
		}
		stats.Nodes++
	}
}

// edgePlan is the resolved endpoint typing for one relationship. Empty
// labels mean an untyped name match on that side.
type edgePlan struct {
	FromLabel string
	ToLabel   string
}

// planRelationship resolves a relationship's endpoint types against the
// name→kind index built from the entity set. CONTAINS requires a File
// source and looks the target's kind up (untyped fallback); IMPORTS is
// File→Library; DEFINES is Class→Method. Every other kind matches untyped
// on both sides.
func planRelationship(rel extract.Relationship, kinds map[string]extract.Kind) edgePlan {
	switch rel.Relation {
	case extract.RelContains:
		plan := edgePlan{FromLabel: "File"}
		if kind, ok := kinds[rel.Target]; ok {
			plan.ToLabel = string(kind)
		}
		return plan
	case extract.RelImports:
		return edgePlan{FromLabel: "File", ToLabel: "Library"}
	case extract.RelDefines:
		return edgePlan{FromLabel: "Class", ToLabel: "Method"}
	}
	return edgePlan{}
}

// upsertRelationships resolves and merges every structural, endpoint, and
// data-flow relationship. Endpoint typing is resolved in a single pass
// against the pre-built kind index, not by scanning entities per edge.
func (l *Loader) upsertRelationships(ctx context.Context, bundle *extract.Bundle, stats *LoadStats) {
	kinds := bundle.KindIndex()

	var all []extract.Relationship
	all = append(all, bundle.Relationships.Items()...)
	all = append(all, bundle.Endpoints.Items()...)
	all = append(all, bundle.DataFlows.Items()...)

	for _, rel := range all {
		plan := planRelationship(rel, kinds)

		builder := NewCypherBuilder()
		query, err := builder.BuildMergeEdge(
			plan.FromLabel, rel.Source,
			plan.ToLabel, rel.Target,
			string(rel.Relation))
		if err != nil {
			stats.UpsertErrs++
			l.logger.Warn("edge query build failed", "relationship", rel, "error", err)
			continue
		}
		if _, err := l.client.Run(ctx, query, builder.Params()); err != nil {
			stats.UpsertErrs++
			l.logger.Warn("edge upsert failed", "relationship", rel,
				"error", atlaserr.UpsertError(err, string(rel.Relation)))
			continue
		}
		stats.Edges++
	}
}

// upsertCalls resolves CALLS edges: Function|Method source to
// Function|Method|Library target. Pairs that resolve to nothing (builtins,
// externals) are silently skipped.
func (l *Loader) upsertCalls(ctx context.Context, bundle *extract.Bundle, stats *LoadStats) {
	for _, call := range bundle.Calls.Items() {
		if call.Relation != extract.RelCalls {
			continue
		}
		builder := NewCypherBuilder()
		query := builder.BuildCallEdge(call.Source, call.Target)
		if _, err := l.client.Run(ctx, query, builder.Params()); err != nil {
			stats.UpsertErrs++
			l.logger.Warn("call upsert failed", "call", call,
				"error", atlaserr.UpsertError(err, call.Target))
			continue
		}
		stats.Calls++
	}
}

// expectedRelations lists the relationship kinds present in a bundle, in
// first-appearance order
func expectedRelations(bundle *extract.Bundle) []string {
	var ordered []string
	seen := make(map[extract.Relation]bool)
	add := func(items []extract.Relationship) {
		for _, rel := range items {
			if !seen[rel.Relation] {
				seen[rel.Relation] = true
				ordered = append(ordered, string(rel.Relation))
			}
		}
	}
	add(bundle.Relationships.Items())
	add(bundle.Endpoints.Items())
	add(bundle.Calls.Items())
	add(bundle.DataFlows.Items())
	return ordered
}

// verify checks that every expected relationship kind persisted at least
// one edge. A kind with zero edges is a warning, not a failure.
func (l *Loader) verify(ctx context.Context, bundle *extract.Bundle, stats *LoadStats) {
	for _, relation := range expectedRelations(bundle) {
		count, err := l.client.CountEdges(ctx, relation)
		if err != nil {
			l.logger.Warn("verification query failed", "relation", relation, "error", err)
			continue
		}
		if count == 0 {
			stats.MissingKinds = append(stats.MissingKinds, relation)
			l.logger.Warn("no persisted edges for relationship kind", "relation", relation)
		} else {
			l.logger.Debug("relationship kind verified", "relation", relation, "count", count)
		}
	}
}
