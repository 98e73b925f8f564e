// Package graph defines the knowledge graph data model and read-side access
// to the organizational graph store. The core never mutates nodes or edges;
// it reads snapshots and subscribes to mutation notifications.
package graph

import (
	"time"
)

// Node kind constants
const (
	KindPerson     = "person"
	KindAgent      = "agent"
	KindTeam       = "team"
	KindDecision   = "decision"
	KindFact       = "fact"
	KindCommitment = "commitment"
	KindQuestion   = "question"
	KindTopic      = "topic"
)

// KnowledgeKinds are the node kinds that carry organizational knowledge
// content (as opposed to actors and groupings).
var KnowledgeKinds = map[string]bool{
	KindDecision:   true,
	KindFact:       true,
	KindCommitment: true,
	KindQuestion:   true,
}

// Node status constants
const (
	StatusActive     = "active"
	StatusSuperseded = "superseded"
)

// Edge relation constants. The relation set is closed; edges carrying an
// unknown relation are dropped at the store boundary.
const (
	RelDecidedBy        = "DECIDED_BY"
	RelAffects          = "AFFECTS"
	RelOwns             = "OWNS"
	RelBlocks           = "BLOCKS"
	RelDependsOn        = "DEPENDS_ON"
	RelContradicts      = "CONTRADICTS"
	RelSupersedes       = "SUPERSEDES"
	RelAbout            = "ABOUT"
	RelCommunicatesWith = "COMMUNICATES_WITH"
	RelAssignedTo       = "ASSIGNED_TO"
	RelProducedBy       = "PRODUCED_BY"
	RelSupervisedBy     = "SUPERVISED_BY"
	RelDelegatesTo      = "DELEGATES_TO"
	RelMemberOf         = "MEMBER_OF"
	RelHandoff          = "HANDOFF"
	RelContextFeeds     = "CONTEXT_FEEDS"
	RelReportsTo        = "REPORTS_TO"
	RelKnowsAbout       = "KNOWS_ABOUT"
	RelResponsibleFor   = "RESPONSIBLE_FOR"
	RelDerivedFrom      = "DERIVED_FROM"
)

// Relations is the closed set of valid edge relations.
var Relations = map[string]bool{
	RelDecidedBy: true, RelAffects: true, RelOwns: true, RelBlocks: true,
	RelDependsOn: true, RelContradicts: true, RelSupersedes: true,
	RelAbout: true, RelCommunicatesWith: true, RelAssignedTo: true,
	RelProducedBy: true, RelSupervisedBy: true, RelDelegatesTo: true,
	RelMemberOf: true, RelHandoff: true, RelContextFeeds: true,
	RelReportsTo: true, RelKnowsAbout: true, RelResponsibleFor: true,
	RelDerivedFrom: true,
}

// Attrs holds kind-specific node attributes. Only the fields relevant to a
// node's kind are populated; the zero value is valid for every kind.
type Attrs struct {
	// person
	Role              string  `json:"role,omitempty"`
	CognitiveLoad     float64 `json:"cognitive_load,omitempty"`
	ActiveCommitments int     `json:"active_commitments,omitempty"`
	PendingDecisions  int     `json:"pending_decisions,omitempty"`

	// agent
	AgentType        string   `json:"agent_type,omitempty"`
	TrustLevel       string   `json:"trust_level,omitempty"`
	SupervisingHuman string   `json:"supervising_human,omitempty"`
	ActiveTasks      []string `json:"active_tasks,omitempty"`

	// knowledge units
	BlastRadius string `json:"blast_radius,omitempty"`
	SourceType  string `json:"source_type,omitempty"`

	// organizational placement
	Department string `json:"department,omitempty"`
	Team       string `json:"team,omitempty"`
	Health     string `json:"health,omitempty"`
}

// Node is one organizational fact, actor, or grouping in the knowledge graph.
// The ID is immutable once assigned. Freshness is derived via Freshness();
// the stored value is a snapshot, never authoritative across time.
type Node struct {
	ID           string    `json:"id"`
	Kind         string    `json:"type"`
	Label        string    `json:"label"`
	Content      string    `json:"content,omitempty"`
	Division     string    `json:"division,omitempty"`
	Status       string    `json:"status,omitempty"`
	Freshness    float64   `json:"freshness_score,omitempty"`
	HalfLifeDays int       `json:"half_life_days,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	Attrs        Attrs     `json:"attrs,omitempty"`
}

// Edge is a directed relation between two nodes. (Source, Target, Relation)
// is the natural key: at most one edge exists per triple.
type Edge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"type"`
	Weight   float64 `json:"weight,omitempty"`
	Label    string  `json:"label,omitempty"`
}

// Meta carries snapshot-level metadata.
type Meta struct {
	CompanyName string    `json:"company_name"`
	GeneratedAt time.Time `json:"generated_at,omitempty"`
	NodeCount   int       `json:"node_count"`
	EdgeCount   int       `json:"edge_count"`
}

// Snapshot is a point-in-time read of the full graph.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	Meta  Meta   `json:"metadata"`
}

// NodeIndex returns a lookup map from node ID to node.
func (s *Snapshot) NodeIndex() map[string]*Node {
	idx := make(map[string]*Node, len(s.Nodes))
	for i := range s.Nodes {
		idx[s.Nodes[i].ID] = &s.Nodes[i]
	}
	return idx
}

// NodeByID returns the node with the given ID, or nil.
func (s *Snapshot) NodeByID(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Division returns the division of the node with the given ID, or "".
func (s *Snapshot) Division(nodeID string) string {
	if n := s.NodeByID(nodeID); n != nil {
		return n.Division
	}
	return ""
}
