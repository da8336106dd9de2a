package api

import "github.com/chrisgreenx-ctrl/nexonco-mcp/internal/config"

// serverCard is the MCP Server Card served on the discovery endpoints
// (SEP-1649).
func serverCard() map[string]interface{} {
	return map[string]interface{}{
		"$schema":         "https://static.modelcontextprotocol.io/schemas/mcp-server-card/v1.json",
		"version":         "1.0",
		"protocolVersion": "2025-11-25",
		"serverInfo": map[string]interface{}{
			"name":    "nexonco",
			"title":   "Nexonco Clinical Evidence Server",
			"version": config.Version,
		},
		"description":      "An advanced MCP Server for accessing and analyzing clinical evidence data, with flexible search options to support precision medicine and oncology research.",
		"documentationUrl": "https://github.com/chrisgreenx-ctrl/nexonco-mcp",
		"transport": map[string]interface{}{
			"type":     "sse",
			"endpoint": "/sse",
		},
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"authentication": map[string]interface{}{
			"required": false,
			"schemes":  []string{},
		},
		"tools": []map[string]interface{}{
			{
				"name":        "search_clinical_evidence",
				"description": "Perform a flexible search for clinical evidence using combinations of filters such as disease, therapy, molecular profile, phenotype, evidence type, and direction.",
			},
		},
		"instructions": "Use this server to search and analyze clinical evidence data from the CIViC database for precision medicine and oncology research.",
	}
}

// mcpConfigSchema is the session configuration schema served on
// /.well-known/mcp-config. The tool takes no session configuration.
func mcpConfigSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema":       "http://json-schema.org/draft-07/schema#",
		"title":         "MCP Session Configuration",
		"description":   "Schema for the /mcp endpoint configuration",
		"x-query-style": "dot+bracket",
		"type":          "object",
		"properties":    map[string]interface{}{},
		"required":      []string{},
	}
}
