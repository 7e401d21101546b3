// Package derive contains the pure view derivations over a finding set:
// filtering, the category histogram fed to the chart sink, and the
// star-topology relationship graph fed to the graph sink. Everything here
// is deterministic and stateless so it can be tested in isolation.
package derive

import (
	"strings"

	"github.com/miguel731/osintdash/api"
)

// Wildcard disables a criterion.
const Wildcard = "all"

// GraphRoot is the fixed center of the relationship graph.
const GraphRoot = "root"

// Criteria selects a subset of findings. Each field is either Wildcard
// (or empty, treated the same) or an exact-match constraint; Search is a
// case-insensitive substring match on the value. Active constraints are
// ANDed.
type Criteria struct {
	Tool     string
	Category string
	Severity string
	Search   string
}

func active(v string) bool {
	return v != "" && v != Wildcard
}

// Match reports whether one finding passes the criteria.
func (c Criteria) Match(f api.Finding) bool {
	if active(c.Tool) && f.Tool != c.Tool {
		return false
	}
	if active(c.Category) && f.Category != c.Category {
		return false
	}
	if active(c.Severity) && f.Severity != c.Severity {
		return false
	}
	if c.Search != "" && !strings.Contains(strings.ToLower(f.Value), strings.ToLower(c.Search)) {
		return false
	}
	return true
}

// Filter returns the findings passing the criteria, in input order.
func Filter(findings []api.Finding, c Criteria) []api.Finding {
	out := make([]api.Finding, 0, len(findings))
	for _, f := range findings {
		if c.Match(f) {
			out = append(out, f)
		}
	}
	return out
}

// HistogramBucket is one chart bar.
type HistogramBucket struct {
	Category string
	Count    int
}

// Histogram counts findings per category, preserving the order in which
// each category is first seen.
func Histogram(findings []api.Finding) []HistogramBucket {
	index := make(map[string]int, 8)
	buckets := make([]HistogramBucket, 0, 8)
	for _, f := range findings {
		if i, ok := index[f.Category]; ok {
			buckets[i].Count++
			continue
		}
		index[f.Category] = len(buckets)
		buckets = append(buckets, HistogramBucket{Category: f.Category, Count: 1})
	}
	return buckets
}

// Node is one graph vertex, identified by the finding value (or GraphRoot).
type Node struct {
	ID string
}

// Edge points from a leaf node to the root.
type Edge struct {
	Source string
	Target string
}

// Graph is the single-level star handed to the rendering sink.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Relationship builds the star graph: one node per distinct subdomain or
// host value, each with exactly one edge to the root; other categories
// contribute nothing. The root node is always present, even for an empty
// input.
func Relationship(findings []api.Finding) Graph {
	seen := make(map[string]bool, len(findings))
	g := Graph{Nodes: []Node{{ID: GraphRoot}}}
	for _, f := range findings {
		if f.Category != "subdomain" && f.Category != "host" {
			continue
		}
		if f.Value == GraphRoot || seen[f.Value] {
			continue
		}
		seen[f.Value] = true
		g.Nodes = append(g.Nodes, Node{ID: f.Value})
		g.Edges = append(g.Edges, Edge{Source: f.Value, Target: GraphRoot})
	}
	return g
}

// Tools lists the distinct tools present in a finding set, in first-seen
// order, for building filter choices.
func Tools(findings []api.Finding) []string {
	return distinct(findings, func(f api.Finding) string { return f.Tool })
}

// Categories lists the distinct categories, in first-seen order.
func Categories(findings []api.Finding) []string {
	return distinct(findings, func(f api.Finding) string { return f.Category })
}

// Severities lists the distinct severities, in first-seen order.
func Severities(findings []api.Finding) []string {
	return distinct(findings, func(f api.Finding) string { return f.Severity })
}

func distinct(findings []api.Finding, key func(api.Finding) string) []string {
	seen := make(map[string]bool, 8)
	out := make([]string, 0, 8)
	for _, f := range findings {
		k := key(f)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
