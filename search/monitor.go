package search

import "github.com/poiesic/ragbot/core"

// QueryMonitor provides hooks to observe the query workflow.
type QueryMonitor interface {
	Start(query string)
	AfterLoad(records int)
	AfterEmbedding(dimensions int)
	AfterMatch(match *core.Match, usedContext bool)
	Finish(answer *Answer)
}

// noopMonitor is a no-op implementation of QueryMonitor
type noopMonitor struct{}

var _ QueryMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                   {}
func (n *noopMonitor) AfterLoad(_ int)                  {}
func (n *noopMonitor) AfterEmbedding(_ int)             {}
func (n *noopMonitor) AfterMatch(_ *core.Match, _ bool) {}
func (n *noopMonitor) Finish(_ *Answer)                 {}
