package types

import "time"

// BuildState tracks a module through the orchestrator's state machine
type BuildState string

const (
	StateUnbuilt     BuildState = "unbuilt"
	StateCachedFresh BuildState = "cached_fresh"
	StateStale       BuildState = "stale"
	StateBuilding    BuildState = "building"
	StateBuilt       BuildState = "built"
	StateFailed      BuildState = "failed"
	StateSkipped     BuildState = "skipped"
)

// Module is one unit of compilation: a set of linked source files plus
// one binding descriptor. The content hash covers every linked source's
// content concatenated with the descriptor text and is recomputed on
// every build invocation.
type Module struct {
	Name       string
	Sources    []string // linked source file paths, in link order
	Descriptor *Descriptor
	DependsOn  []string

	Hash  [32]byte
	State BuildState
}

// ModuleStatus is the per-module entry of a build report.
type ModuleStatus struct {
	Name        string
	State       BuildState
	Artifact    string
	Duration    time.Duration
	Diagnostics []string // aggregated warnings and errors, one batch per module
	Err         error
}

// BuildReport is the structured result handed back to the CLI or MCP
// collaborator after a build run.
type BuildReport struct {
	Modules  []ModuleStatus
	Rebuilt  int
	Fresh    int
	Failed   int
	Skipped  int // never dispatched: fail-fast stop or interrupt
	Duration time.Duration
}

// StatusFor returns the status entry for the named module, or nil.
func (r *BuildReport) StatusFor(name string) *ModuleStatus {
	for i := range r.Modules {
		if r.Modules[i].Name == name {
			return &r.Modules[i]
		}
	}
	return nil
}

// Succeeded reports whether no module failed.
func (r *BuildReport) Succeeded() bool {
	return r.Failed == 0
}
