package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/cppbind/internal/builder"
	"github.com/dshills/cppbind/internal/discover"
	"github.com/dshills/cppbind/internal/mcp"
	"github.com/dshills/cppbind/internal/storage"
	"github.com/dshills/cppbind/pkg/types"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("cppbind\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	// Log to stderr (stdout reserved for MCP protocol in serve mode)
	log.SetOutput(os.Stderr)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "status":
		err = runStatus(os.Args[2:])
	case "serve":
		err = runServe()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("cppbind: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cppbind <command> [flags] [path]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  build   discover descriptors under path and build modules")
	fmt.Fprintln(os.Stderr, "  status  report per-module cache state without building")
	fmt.Fprintln(os.Stderr, "  serve   run the MCP server on stdio")
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	jobs := fs.Int("jobs", 0, "maximum concurrent compiles (default: number of CPUs)")
	force := fs.Bool("force", false, "rebuild every module ignoring the cache")
	failFast := fs.Bool("fail-fast", false, "stop dispatching new compiles after the first failure")
	clean := fs.Bool("clean", false, "delete all cached artifacts and records first")
	cxx := fs.String("cxx", "", "C++ compiler binary (overrides CPPBIND_CXX)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cxx != "" {
		if err := os.Setenv("CPPBIND_CXX", *cxx); err != nil {
			return err
		}
	}

	root, err := projectRoot(fs.Args())
	if err != nil {
		return err
	}

	store, bld, err := openBuilder(*jobs, *force, *failFast)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	if *clean {
		if err := bld.Clean(ctx); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}
		log.Println("cache cleared")
	}

	modules, err := loadModules(root)
	if err != nil {
		return err
	}

	report, err := bld.Build(ctx, modules)
	if err != nil {
		return err
	}
	printReport(report)
	if !report.Succeeded() {
		os.Exit(1)
	}
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	root, err := projectRoot(fs.Args())
	if err != nil {
		return err
	}

	store, bld, err := openBuilder(0, false, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signalContext()
	defer cancel()

	modules, err := loadModules(root)
	if err != nil {
		return err
	}

	report, err := bld.Status(ctx, modules)
	if err != nil {
		return err
	}
	for _, st := range report.Modules {
		line := fmt.Sprintf("%-24s %s", st.Name, st.State)
		if st.Artifact != "" {
			line += "  " + st.Artifact
		}
		fmt.Println(line)
	}
	return nil
}

func runServe() error {
	dbPath := os.Getenv("CPPBIND_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBPath
	}

	server, err := mcp.NewServer(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	log.Printf("cppbind MCP server v%s listening on stdio...", version)
	return server.Serve(ctx)
}

func projectRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

func openBuilder(jobs int, force, failFast bool) (storage.Storage, *builder.Builder, error) {
	cacheDir := builder.DefaultCacheDir()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, nil, err
	}

	dbPath := os.Getenv("CPPBIND_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(cacheDir, "cppbind.db")
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	bld, err := builder.New(store, &builder.Config{
		Workers:      jobs,
		CacheDir:     cacheDir,
		ForceRebuild: force,
		FailFast:     failFast,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, bld, nil
}

func loadModules(root string) ([]*types.Module, error) {
	scan, err := discover.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("project scan failed: %w", err)
	}
	if len(scan.Descriptors) == 0 {
		return nil, fmt.Errorf("no %s descriptors found under %s", discover.DescriptorExt, root)
	}
	return builder.AssembleFiles(scan.DescriptorPaths(root))
}

func printReport(report *types.BuildReport) {
	for _, st := range report.Modules {
		switch st.State {
		case types.StateBuilt:
			fmt.Printf("built        %s (%s)\n", st.Name, st.Duration.Round(time.Millisecond))
		case types.StateCachedFresh:
			fmt.Printf("fresh        %s\n", st.Name)
		case types.StateFailed:
			fmt.Printf("FAILED       %s: %v\n", st.Name, st.Err)
		default:
			fmt.Printf("%-12s %s\n", st.State, st.Name)
		}
		for _, d := range st.Diagnostics {
			fmt.Printf("             %s\n", d)
		}
	}
	fmt.Printf("%d rebuilt, %d fresh, %d failed, %d skipped in %s\n",
		report.Rebuilt, report.Fresh, report.Failed, report.Skipped,
		report.Duration.Round(time.Millisecond))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
