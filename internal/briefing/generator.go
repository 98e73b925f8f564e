// Package briefing generates personalized executive briefings and
// onboarding packages from the knowledge graph.
package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridianlabs/nexus/internal/graph"
	"github.com/meridianlabs/nexus/internal/llm"
	"github.com/meridianlabs/nexus/internal/orgcontext"
	"github.com/meridianlabs/nexus/internal/prompts"
	"github.com/meridianlabs/nexus/internal/storage"
)

const (
	temporalBudget = 4000
	teamBudget     = 3000
)

// completer is the slice of the gateway the generator needs.
type completer interface {
	Complete(ctx context.Context, taskType, system, user string, opts llm.Opts) (string, error)
	CompleteStream(ctx context.Context, taskType, system, user string, opts llm.Opts) (*llm.Stream, error)
	CompleteStructured(ctx context.Context, taskType, system, user string, v any, opts llm.Opts) error
}

type memory interface {
	ListAlerts(ctx context.Context, unresolvedOnly bool) ([]storage.AlertRecord, error)
}

// PersonBriefing is one generated briefing.
type PersonBriefing struct {
	PersonID   string `json:"person_id"`
	PersonName string `json:"person_name"`
	Role       string `json:"role"`
	Text       string `json:"briefing_text"`
}

// OnboardingStep is one section of an onboarding package.
type OnboardingStep struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// OnboardingPackage is the structured onboarding result.
type OnboardingPackage struct {
	Steps                []OnboardingStep `json:"steps"`
	TimeToContextMinutes int              `json:"time_to_context_minutes"`
}

// Generator produces briefings against the current graph snapshot.
type Generator struct {
	gw     completer
	store  graph.Store
	mem    memory
	logger *slog.Logger

	now func() time.Time
}

func NewGenerator(gw completer, store graph.Store, mem memory, logger *slog.Logger) *Generator {
	return &Generator{gw: gw, store: store, mem: mem, logger: logger, now: time.Now}
}

// Person generates a plain-text executive briefing for one person.
func (g *Generator) Person(ctx context.Context, personID string) (*PersonBriefing, error) {
	system, name, role, err := g.briefingPrompt(ctx, personID)
	if err != nil {
		return nil, err
	}

	text, err := g.gw.Complete(ctx, "briefing", system, g.briefingUser(name), llm.Opts{NoCache: true})
	if err != nil {
		return nil, err
	}

	g.logger.Info("briefing generated", "person", name, "chars", len(text))
	return &PersonBriefing{PersonID: personID, PersonName: name, Role: role, Text: text}, nil
}

// PersonStream streams briefing tokens for the typewriter effect.
func (g *Generator) PersonStream(ctx context.Context, personID string) (*llm.Stream, error) {
	system, name, _, err := g.briefingPrompt(ctx, personID)
	if err != nil {
		return nil, err
	}
	return g.gw.CompleteStream(ctx, "briefing", system, g.briefingUser(name), llm.Opts{NoCache: true})
}

// Onboarding generates a structured onboarding package for a new team member.
func (g *Generator) Onboarding(ctx context.Context, teamName, division string) (*OnboardingPackage, error) {
	snap, err := g.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	alerts, _ := g.mem.ListAlerts(ctx, true)

	summary := orgcontext.OrgSummary(snap)
	teamContext := orgcontext.DivisionContext(snap, division) + "\n\n" +
		orgcontext.Truncate(orgcontext.KnowledgeUnits(snap), teamBudget)
	system := prompts.System(summary.CompanyName, summary.NodeCount, summary.EdgeCount,
		summary.DivisionCount, summary.PersonCount, summary.AgentCount) +
		"\n\n" + prompts.Onboarding(teamName, division, teamContext, orgcontext.AlertsSummary(alerts))
	user := fmt.Sprintf("Generate the onboarding package now for a new engineer joining %s in %s.",
		teamName, division)

	var pkg OnboardingPackage
	if err := g.gw.CompleteStructured(ctx, "onboarding", system, user, &pkg, llm.Opts{NoCache: true}); err != nil {
		return nil, err
	}

	g.logger.Info("onboarding generated", "team", teamName, "steps", len(pkg.Steps))
	return &pkg, nil
}

// briefingPrompt assembles the system prompt plus the person's display name
// and role. Missing attributes fall back to generic labels.
func (g *Generator) briefingPrompt(ctx context.Context, personID string) (system, name, role string, err error) {
	snap, err := g.store.Snapshot(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("load graph: %w", err)
	}
	person := snap.NodeByID(personID)
	if person == nil {
		return "", "", "", fmt.Errorf("person not found: %s", personID)
	}

	name = person.Label
	if name == "" {
		name = "Executive"
	}
	role = person.Attrs.Role
	if role == "" {
		role = "Leader"
	}
	division := person.Division
	if division == "" {
		division = "HQ"
	}

	alerts, _ := g.mem.ListAlerts(ctx, true)
	summary := orgcontext.OrgSummary(snap)
	system = prompts.System(summary.CompanyName, summary.NodeCount, summary.EdgeCount,
		summary.DivisionCount, summary.PersonCount, summary.AgentCount) +
		"\n\n" + prompts.Briefing(name, role, division,
		orgcontext.Truncate(orgcontext.KnowledgeUnits(snap), temporalBudget),
		orgcontext.AlertsSummary(alerts),
		orgcontext.PersonContext(snap, personID))
	return system, name, role, nil
}

func (g *Generator) briefingUser(name string) string {
	return fmt.Sprintf("Generate the briefing for %s now. Today's date is %s.",
		name, g.now().Format("2006-01-02"))
}
