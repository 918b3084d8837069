// Package mcp implements the Model Context Protocol (MCP) server for cppbind.
//
// The MCP server exposes three tools to AI coding assistants:
//   - build_modules: Discover descriptors and build every module incrementally
//   - get_build_status: Report per-module cache state without building
//   - list_registry: List the discovery registry of built artifacts
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	cppbind serve
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: build_modules
//
//	Request:
//	{
//	  "name": "build_modules",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "jobs": 4,
//	    "force_rebuild": false
//	  }
//	}
//
// The response carries rebuilt/fresh/failed counts and a per-module row
// with state, artifact path and diagnostics.
//
// # Error Codes
//
// Beyond the standard JSON-RPC codes, the server reports:
//
//	-32001 no binding descriptors under the given path
//	-32002 module dependency cycle (data carries the cycle path)
package mcp
