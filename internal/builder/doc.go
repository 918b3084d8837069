// Package builder orchestrates incremental module builds.
//
// The pipeline for one module is extract -> bind -> compile -> cache:
// the extractor produces a symbol table from the linked sources, the
// binder resolves the descriptor's exports into a plan and glue source,
// the external toolchain compiles glue plus translation units into a
// shared library, and the cache row is written only after success.
//
// # Incremental Behavior
//
// Every run recomputes each module's SHA-256 content hash (linked
// sources in link order, then descriptor text). A module whose stored
// hash matches and whose artifact still exists is cached-fresh and
// skipped; everything else is rebuilt. ForceRebuild bypasses the
// shortcut.
//
// # Scheduling
//
// Modules are grouped into dependency depth levels and each level is
// dispatched on a bounded worker pool:
//
//	semaphore := make(chan struct{}, workers)
//	var g errgroup.Group
//
// A module runs only after all of its dependencies are built or
// cached-fresh. A failed dependency marks every transitive dependent
// failed without dispatching it; modules unrelated to the failure keep
// building. With FailFast set, the first failure stops not-yet-started
// work (reported as skipped) while in-flight compiles finish.
package builder
