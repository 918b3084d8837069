package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/cppbind/internal/builder"
	"github.com/dshills/cppbind/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "cppbind"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.cppbind/cache"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	builder *builder.Builder
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		dbPath = builder.DefaultCacheDir()
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbFile := filepath.Join(dbPath, "cppbind.db")

	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	bld, err := builder.New(store, &builder.Config{CacheDir: dbPath})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize builder: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
		builder: bld,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(buildModulesTool(), s.handleBuildModules)
	s.mcp.AddTool(getBuildStatusTool(), s.handleGetBuildStatus)
	s.mcp.AddTool(listRegistryTool(), s.handleListRegistry)
	return nil
}
