package mcp

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cppbind/internal/builder"
	"github.com/dshills/cppbind/internal/discover"
	"github.com/dshills/cppbind/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams   = -32602 // Invalid method parameters
	ErrorCodeInternalError   = -32603 // Internal JSON-RPC error
	ErrorCodeNoDescriptors   = -32001 // Project contains no binding descriptors
	ErrorCodeDependencyCycle = -32002 // Module dependency cycle detected
)

// handleBuildModules handles the build_modules tool invocation
func (s *Server) handleBuildModules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	jobs := getIntDefault(args, "jobs", 0)
	force, _ := args["force_rebuild"].(bool)
	failFast, _ := args["fail_fast"].(bool)

	modules, err := s.discoverModules(path)
	if err != nil {
		return nil, err
	}

	bld, err := builder.New(s.storage, &builder.Config{
		Workers:      jobs,
		CacheDir:     builder.DefaultCacheDir(),
		ForceRebuild: force,
		FailFast:     failFast,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to configure builder", map[string]interface{}{
			"error": err.Error(),
		})
	}

	report, err := bld.Build(ctx, modules)
	if err != nil {
		var cyc *types.DependencyCycleError
		if errors.As(err, &cyc) {
			return nil, newMCPError(ErrorCodeDependencyCycle, "dependency cycle detected", map[string]interface{}{
				"cycle": cyc.Cycle,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "build failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"succeeded":   report.Succeeded(),
		"rebuilt":     report.Rebuilt,
		"fresh":       report.Fresh,
		"failed":      report.Failed,
		"skipped":     report.Skipped,
		"duration_ms": report.Duration.Milliseconds(),
		"modules":     moduleRows(report),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetBuildStatus handles the get_build_status tool invocation
func (s *Server) handleGetBuildStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	modules, err := s.discoverModules(path)
	if err != nil {
		return nil, err
	}

	report, err := s.builder.Status(ctx, modules)
	if err != nil {
		var cyc *types.DependencyCycleError
		if errors.As(err, &cyc) {
			return nil, newMCPError(ErrorCodeDependencyCycle, "dependency cycle detected", map[string]interface{}{
				"cycle": cyc.Cycle,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "status check failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"fresh":   report.Fresh,
		"modules": moduleRows(report),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListRegistry handles the list_registry tool invocation
func (s *Server) handleListRegistry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.storage.Registry(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read registry", map[string]interface{}{
			"error": err.Error(),
		})
	}

	rows := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]interface{}{
			"module":       e.Module,
			"artifact":     e.ArtifactPath,
			"content_hash": hex.EncodeToString(e.ContentHash[:]),
			"built_at":     e.BuiltAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response := map[string]interface{}{
		"count":   len(rows),
		"modules": rows,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// discoverModules scans a project root and assembles its build modules.
func (s *Server) discoverModules(root string) ([]*types.Module, error) {
	scan, err := discover.Scan(root)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "project scan failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if len(scan.Descriptors) == 0 {
		return nil, newMCPError(ErrorCodeNoDescriptors, "no binding descriptors found", map[string]interface{}{
			"path": root,
		})
	}

	modules, err := builder.AssembleFiles(scan.DescriptorPaths(root))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "failed to load descriptors", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return modules, nil
}

// moduleRows renders a build report's per-module entries for JSON output.
func moduleRows(report *types.BuildReport) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(report.Modules))
	for _, st := range report.Modules {
		row := map[string]interface{}{
			"name":  st.Name,
			"state": string(st.State),
		}
		if st.Artifact != "" {
			row["artifact"] = st.Artifact
		}
		if st.Duration > 0 {
			row["duration_ms"] = st.Duration.Milliseconds()
		}
		if len(st.Diagnostics) > 0 {
			row["diagnostics"] = st.Diagnostics
		}
		if st.Err != nil {
			row["error"] = st.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
