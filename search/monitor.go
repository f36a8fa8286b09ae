package search

import (
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/intent"
)

// SearchMonitor provides hooks to observe the ranking process.
// Implement this interface to trace how a query was rewritten and scored.
type SearchMonitor interface {
	Start(query string)
	AfterIntent(in intent.Intent, terms []string)
	AfterResolve(result core.ResolveResult, terms []string)
	AfterSemanticLookup(skills []core.SkillScore)
	ProgramScored(match *core.ProgramMatch)
	Finish(results []*core.ProgramMatch)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                               {}
func (n *noopMonitor) AfterIntent(_ intent.Intent, _ []string)      {}
func (n *noopMonitor) AfterResolve(_ core.ResolveResult, _ []string) {}
func (n *noopMonitor) AfterSemanticLookup(_ []core.SkillScore)      {}
func (n *noopMonitor) ProgramScored(_ *core.ProgramMatch)           {}
func (n *noopMonitor) Finish(_ []*core.ProgramMatch)                {}
