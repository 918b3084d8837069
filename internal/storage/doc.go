// Package storage provides SQLite-based persistence for the build cache
// and the discovery registry.
//
// One row per module records its linked source files, descriptor path,
// content hash, artifact path and terminal build status. The registry
// view over successfully built modules is what the host-language loader
// reads at import time.
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.cppbind/cache/cppbind.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	rec, err := db.GetModule(ctx, "gamekit")
//	if err == storage.ErrNotFound {
//	    // never built
//	}
//
// # Incremental Builds
//
// The orchestrator compares a freshly computed content hash against the
// stored one:
//
//	if rec.ContentHash == freshHash && artifactExists(rec.ArtifactPath) {
//	    // cached-fresh: skip recompilation
//	}
//
// Cache rows are updated only after a module finishes building, so a
// failing rebuild never clobbers the record of a prior good build.
//
// # Build Tags
//
// Two driver configurations are supported:
//
//   - cgo_sqlite: github.com/mattn/go-sqlite3 (requires a C compiler)
//   - default: modernc.org/sqlite (pure Go)
package storage
