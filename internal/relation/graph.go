// Package relation builds the directed follow-up graph among an agent's
// intents. The graph is built once at agent-definition time, rejects cycles,
// and is queried read-only by exporters (context/event encoding) and parsers
// (follow-up reachability).
package relation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parlancehq/parlance/internal/model"
)

// Context is a named conversational context window with a turn lifespan.
type Context struct {
	Name     string
	Lifespan int
}

// Graph is the compiled follow-up relation graph. Nodes are intent names;
// an edge child->parent carries the lifespan the parent's context keeps when
// the relation re-spawns it.
type Graph struct {
	// parents maps an intent to the relations it declares.
	parents map[string][]model.Follow
	// children maps an intent to the intents that follow it.
	children map[string][]string
	// spawned marks intents whose context is referenced by at least one
	// follower. Only those intents output their context on export.
	spawned map[string]bool
}

// CyclicRelationError reports a cycle in the follow graph, naming the cycle
// path. Cycles would make context lifespan bookkeeping undecidable, so they
// are rejected at definition time.
type CyclicRelationError struct {
	Path []string
}

func (e *CyclicRelationError) Error() string {
	return fmt.Sprintf("cyclic follow relation: %s", strings.Join(e.Path, " -> "))
}

// Build constructs the relation graph for a validated agent. It fails with
// CyclicRelationError when the follow relations contain a cycle, and wraps it
// in a model.DefinitionError so that callers can treat it uniformly with
// other definition-time failures.
func Build(agent *model.Agent) (*Graph, error) {
	g := &Graph{
		parents:  make(map[string][]model.Follow),
		children: make(map[string][]string),
		spawned:  make(map[string]bool),
	}
	for _, it := range agent.Intents() {
		for _, f := range it.Follows {
			follow := f
			if follow.Lifespan < 0 {
				follow.Lifespan = model.DefaultFollowLifespan
			}
			g.parents[it.Name] = append(g.parents[it.Name], follow)
			g.children[follow.Parent] = append(g.children[follow.Parent], it.Name)
			g.spawned[follow.Parent] = true
		}
	}

	if cycle := findCycle(g.children); cycle != nil {
		return nil, &model.DefinitionError{
			Code:    model.ErrCodeCyclicRelation,
			Message: (&CyclicRelationError{Path: cycle}).Error(),
			Err:     &CyclicRelationError{Path: cycle},
		}
	}
	return g, nil
}

// InputContexts returns the contexts an intent requires to be active, i.e.
// the contexts of the intents it follows. Sorted for deterministic export.
func (g *Graph) InputContexts(intentName string) []string {
	var result []string
	for _, f := range g.parents[intentName] {
		result = append(result, ContextName(f.Parent))
	}
	sort.Strings(result)
	return result
}

// OutputContexts returns the contexts an intent spawns when predicted: its
// own context when at least one intent follows it, plus re-spawned parent
// contexts for relations that redefine a lifespan.
func (g *Graph) OutputContexts(intentName string) []Context {
	var result []Context
	seen := make(map[string]bool)
	if g.spawned[intentName] {
		name := ContextName(intentName)
		result = append(result, Context{Name: name, Lifespan: model.DefaultFollowLifespan})
		seen[name] = true
	}
	for _, f := range g.parents[intentName] {
		if f.Lifespan == model.DefaultFollowLifespan {
			continue
		}
		name := ContextName(f.Parent)
		if !seen[name] {
			result = append(result, Context{Name: name, Lifespan: f.Lifespan})
			seen[name] = true
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Followers returns the names of the intents that follow the given one.
func (g *Graph) Followers(intentName string) []string {
	result := append([]string(nil), g.children[intentName]...)
	sort.Strings(result)
	return result
}

// IsReachable reports whether the given intent may be predicted while the
// given contexts are active. An intent with no follow relations is always
// reachable; an intent that follows others needs at least one of its parent
// contexts active. Parsers use this to annotate (not reject) predictions
// with a context mismatch, since the source service is the authority on
// matching.
func (g *Graph) IsReachable(intentName string, activeContexts []string) bool {
	parents := g.parents[intentName]
	if len(parents) == 0 {
		return true
	}
	active := make(map[string]bool, len(activeContexts))
	for _, c := range activeContexts {
		active[c] = true
	}
	for _, f := range parents {
		if active[ContextName(f.Parent)] {
			return true
		}
	}
	return false
}

// findCycle detects strongly connected components in the follow graph using
// Tarjan's algorithm and returns a cycle path from the first SCC found, or
// nil for a DAG. Self-loops count as cycles.
func findCycle(graph map[string][]string) []string {
	var (
		index   int
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		cycle   []string
	)

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if cycle == nil && (len(scc) > 1 || hasSelfLoop(scc[0], graph)) {
				cycle = cyclePath(scc, graph)
			}
		}
	}

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return cycle
}

func hasSelfLoop(node string, graph map[string][]string) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// cyclePath reconstructs a closed walk through the SCC members, starting and
// ending at the same node, for error reporting.
func cyclePath(scc []string, graph map[string][]string) []string {
	if len(scc) == 1 {
		return []string{scc[0], scc[0]}
	}
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	sort.Strings(scc)
	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		next := ""
		for _, neighbor := range graph[current] {
			if neighbor == start && len(path) > 1 {
				return append(path, start)
			}
			if members[neighbor] && !visited[neighbor] {
				next = neighbor
				break
			}
		}
		if next == "" {
			// No unvisited member leads on; close the walk where we are.
			return append(path, start)
		}
		visited[next] = true
		path = append(path, next)
		current = next
	}
}
