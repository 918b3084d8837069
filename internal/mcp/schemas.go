package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// buildModulesTool returns the tool definition for build_modules
func buildModulesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "build_modules",
		Description: "Discover binding descriptors under a project root and build every module incrementally",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root containing .cppbind descriptors",
				},
				"jobs": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum concurrent compiles (default: number of CPUs)",
					"minimum":     1,
					"maximum":     64,
				},
				"force_rebuild": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, rebuild every module ignoring the content-hash cache",
					"default":     false,
				},
				"fail_fast": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, stop dispatching new compiles after the first failure; in-flight compiles finish",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getBuildStatusTool returns the tool definition for get_build_status
func getBuildStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_build_status",
		Description: "Report per-module build state (cached_fresh, stale, unbuilt) without building anything",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the project root containing .cppbind descriptors",
				},
			},
			Required: []string{"path"},
		},
	}
}

// listRegistryTool returns the tool definition for list_registry
func listRegistryTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_registry",
		Description: "List the discovery registry: every successfully built module with its artifact path and content hash",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
