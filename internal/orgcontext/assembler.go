// Package orgcontext renders graph snapshots into prompt-friendly text.
// Every function here is a pure transformation over a Snapshot; all model
// calls and I/O live elsewhere.
package orgcontext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/storage"
)

// Summary holds org-level counts for instruction template formatting.
type Summary struct {
	CompanyName   string `json:"company_name"`
	NodeCount     int    `json:"node_count"`
	EdgeCount     int    `json:"edge_count"`
	PersonCount   int    `json:"person_count"`
	AgentCount    int    `json:"agent_count"`
	DivisionCount int    `json:"division_count"`
}

// OrgSummary computes org metadata from a snapshot.
func OrgSummary(snap *graph.Snapshot) Summary {
	s := Summary{
		CompanyName: snap.Meta.CompanyName,
		NodeCount:   len(snap.Nodes),
		EdgeCount:   len(snap.Edges),
	}
	divisions := make(map[string]bool)
	for _, n := range snap.Nodes {
		switch n.Kind {
		case graph.KindPerson:
			s.PersonCount++
		case graph.KindAgent:
			s.AgentCount++
		}
		if n.Division != "" {
			divisions[n.Division] = true
		}
	}
	s.DivisionCount = len(divisions)
	return s
}

// OrgContext renders the full organization as natural language for system
// prompts: people, AI agents, knowledge units, and the edges that matter.
func OrgContext(snap *graph.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", snap.Meta.CompanyName)
	fmt.Fprintf(&b, "Knowledge graph: %d nodes, %d edges\n\n", len(snap.Nodes), len(snap.Edges))

	b.WriteString("== PEOPLE ==\n")
	for _, n := range snap.Nodes {
		if n.Kind != graph.KindPerson {
			continue
		}
		fmt.Fprintf(&b, "- %s (ID: %s) | %s | %s | Load: %d%% | Commitments: %d\n",
			n.Label, n.ID, orUnknown(n.Attrs.Role), orUnknown(n.Division),
			int(n.Attrs.CognitiveLoad*100), n.Attrs.ActiveCommitments)
	}

	b.WriteString("\n== AI AGENTS ==\n")
	for _, n := range snap.Nodes {
		if n.Kind != graph.KindAgent {
			continue
		}
		fmt.Fprintf(&b, "- %s (ID: %s) | %s | Trust: %s | Supervisor: %s | Tasks: %s\n",
			n.Label, n.ID, orUnknown(n.Attrs.AgentType), orUnknown(n.Attrs.TrustLevel),
			orUnknown(n.Attrs.SupervisingHuman), strings.Join(n.Attrs.ActiveTasks, ", "))
	}

	b.WriteString("\n== KEY KNOWLEDGE UNITS ==\n")
	for _, n := range snap.Nodes {
		if !graph.KnowledgeKinds[n.Kind] {
			continue
		}
		fmt.Fprintf(&b, "- [%s] %s (ID: %s) | Division: %s | Status: %s | Freshness: %.3f | Blast: %s\n",
			strings.ToUpper(n.Kind), n.Label, n.ID, orUnknown(n.Division),
			orUnknown(n.Status), n.Freshness, orUnknown(n.Attrs.BlastRadius))
		if n.Content != "" && n.Content != n.Label {
			fmt.Fprintf(&b, "  Content: %s\n", Truncate(n.Content, 200))
		}
	}

	b.WriteString("\n== EDGES (key relationships) ==\n")
	important := map[string]bool{
		graph.RelContradicts: true, graph.RelSupersedes: true,
		graph.RelBlocks: true, graph.RelDependsOn: true, graph.RelDelegatesTo: true,
	}
	for _, e := range snap.Edges {
		if important[e.Relation] {
			fmt.Fprintf(&b, "- %s --[%s]--> %s\n", e.Source, e.Relation, e.Target)
		}
	}

	var comm []graph.Edge
	for _, e := range snap.Edges {
		if e.Relation == graph.RelCommunicatesWith {
			comm = append(comm, e)
		}
	}
	if len(comm) > 0 {
		b.WriteString("\n== COMMUNICATION CHANNELS ==\n")
		for _, e := range comm {
			fmt.Fprintf(&b, "- %s <-> %s (weight: %.2f)\n", e.Source, e.Target, e.Weight)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// PeopleList renders a compact person roster for entity matching.
func PeopleList(snap *graph.Snapshot) string {
	var lines []string
	for _, n := range snap.Nodes {
		if n.Kind == graph.KindPerson {
			lines = append(lines, fmt.Sprintf("- %s (ID: %s, %s, %s)",
				n.Label, n.ID, orUnknown(n.Attrs.Role), orUnknown(n.Division)))
		}
	}
	return strings.Join(lines, "\n")
}

// AgentsList renders a compact AI agent roster.
func AgentsList(snap *graph.Snapshot) string {
	var lines []string
	for _, n := range snap.Nodes {
		if n.Kind == graph.KindAgent {
			lines = append(lines, fmt.Sprintf("- %s (ID: %s, %s, %s)",
				n.Label, n.ID, orUnknown(n.Attrs.AgentType), orUnknown(n.Division)))
		}
	}
	return strings.Join(lines, "\n")
}

// AlertsSummary renders unresolved alerts as a context string.
func AlertsSummary(alerts []storage.AlertRecord) string {
	var b strings.Builder
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		fmt.Fprintf(&b, "- [%s] [%s] %s | Scope: %s | Affected: %s\n",
			strings.ToUpper(a.Severity), a.Agent, a.Headline,
			orUnknown(a.Scope), strings.Join(a.AffectedNodeIDs, ", "))
		if a.Detail != "" {
			fmt.Fprintf(&b, "  Detail: %s\n", Truncate(a.Detail, 200))
		}
	}
	if b.Len() == 0 {
		return "No active alerts."
	}
	return strings.TrimRight(b.String(), "\n")
}

// NodeNeighborhood renders a node and its neighbors up to depth hops away,
// following edges in both directions, plus all edges induced on the set.
func NodeNeighborhood(snap *graph.Snapshot, nodeID string, depth int) string {
	idx := snap.NodeIndex()
	center, ok := idx[nodeID]
	if !ok {
		return fmt.Sprintf("Node %s not found.", nodeID)
	}

	visited := map[string]bool{nodeID: true}
	frontier := map[string]bool{nodeID: true}
	for hop := 0; hop < depth; hop++ {
		next := make(map[string]bool)
		for _, e := range snap.Edges {
			if frontier[e.Source] && !visited[e.Target] {
				next[e.Target] = true
				visited[e.Target] = true
			}
			if frontier[e.Target] && !visited[e.Source] {
				next[e.Source] = true
				visited[e.Source] = true
			}
		}
		frontier = next
	}

	var b strings.Builder
	fmt.Fprintf(&b, "== Context around %s ==\n", center.Label)
	// snapshot order keeps rendering deterministic
	for _, n := range snap.Nodes {
		if !visited[n.ID] {
			continue
		}
		fmt.Fprintf(&b, "- %s (ID: %s, type: %s, division: %s)\n",
			n.Label, n.ID, n.Kind, orUnknown(n.Division))
		if n.Content != "" {
			fmt.Fprintf(&b, "  Content: %s\n", Truncate(n.Content, 150))
		}
	}

	b.WriteString("\nRelationships:\n")
	for _, e := range snap.Edges {
		if visited[e.Source] && visited[e.Target] {
			fmt.Fprintf(&b, "- %s --[%s]--> %s\n", e.Source, e.Relation, e.Target)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// PersonContext renders one person with load figures and connected nodes.
func PersonContext(snap *graph.Snapshot, personID string) string {
	idx := snap.NodeIndex()
	person, ok := idx[personID]
	if !ok {
		return fmt.Sprintf("Person %s not found.", personID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Person: %s\n", person.Label)
	fmt.Fprintf(&b, "Role: %s\n", orUnknown(person.Attrs.Role))
	fmt.Fprintf(&b, "Division: %s\n", orUnknown(person.Division))
	fmt.Fprintf(&b, "Cognitive Load: %.2f\n", person.Attrs.CognitiveLoad)
	fmt.Fprintf(&b, "Active Commitments: %d\n", person.Attrs.ActiveCommitments)
	fmt.Fprintf(&b, "Pending Decisions: %d\n", person.Attrs.PendingDecisions)
	b.WriteString("\nConnected nodes:\n")

	for _, e := range snap.Edges {
		var other *graph.Node
		if e.Source == personID {
			other = idx[e.Target]
		} else if e.Target == personID {
			other = idx[e.Source]
		}
		if other != nil {
			fmt.Fprintf(&b, "- [%s] %s (%s, %s)\n",
				e.Relation, other.Label, other.Kind, orUnknown(other.Division))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// DivisionContext renders one division's nodes and edge statistics.
func DivisionContext(snap *graph.Snapshot, division string) string {
	inDiv := make(map[string]bool)
	var b strings.Builder
	var count int
	for _, n := range snap.Nodes {
		if n.Division == division {
			inDiv[n.ID] = true
			count++
		}
	}

	fmt.Fprintf(&b, "== Division: %s (%d nodes) ==\n", division, count)
	for _, n := range snap.Nodes {
		if inDiv[n.ID] {
			fmt.Fprintf(&b, "- %s (ID: %s, type: %s)\n", n.Label, n.ID, n.Kind)
		}
	}

	var involving, cross int
	for _, e := range snap.Edges {
		if inDiv[e.Source] || inDiv[e.Target] {
			involving++
			if !inDiv[e.Source] || !inDiv[e.Target] {
				cross++
			}
		}
	}
	fmt.Fprintf(&b, "\nEdges involving %s: %d\n", division, involving)
	fmt.Fprintf(&b, "Cross-division edges: %d", cross)
	return b.String()
}

// KnowledgeUnits renders all knowledge units, newest first.
func KnowledgeUnits(snap *graph.Snapshot) string {
	var units []graph.Node
	for _, n := range snap.Nodes {
		if graph.KnowledgeKinds[n.Kind] {
			units = append(units, n)
		}
	}
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].CreatedAt.After(units[j].CreatedAt)
	})

	blocks := make([]string, 0, len(units))
	for _, n := range units {
		blocks = append(blocks, fmt.Sprintf(
			"[%s] %s (ID: %s)\n  Division: %s | Status: %s | Freshness: %.3f | Source: %s\n  Content: %s",
			strings.ToUpper(n.Kind), n.Label, n.ID, orUnknown(n.Division),
			orUnknown(n.Status), n.Freshness, orUnknown(n.Attrs.SourceType),
			Truncate(n.Content, 200)))
	}
	return strings.Join(blocks, "\n\n")
}

// NodeText pairs a node ID with its embeddable text.
type NodeText struct {
	ID   string
	Text string
}

// NodeTexts returns the text rendered for each node's embedding: label,
// content, role, and kind joined with separators.
func NodeTexts(snap *graph.Snapshot) []NodeText {
	out := make([]NodeText, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		parts := []string{n.Label}
		if n.Content != "" {
			parts = append(parts, n.Content)
		}
		if n.Attrs.Role != "" {
			parts = append(parts, n.Attrs.Role)
		}
		parts = append(parts, n.Kind)
		out = append(out, NodeText{ID: n.ID, Text: strings.Join(parts, " | ")})
	}
	return out
}

// Truncate bounds s to at most n runes. Deterministic prefix truncation;
// never errors, never splits a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
