package mcp

// buildToolsList returns the catalog served by tools/list. Schema maps follow
// the JSON Schema subset MCP clients understand.
func buildToolsList() []MCPTool {
	scopeProperties := map[string]interface{}{
		"user_id": map[string]interface{}{
			"type":        "string",
			"description": "Scope to a user",
		},
		"agent_id": map[string]interface{}{
			"type":        "string",
			"description": "Scope to an agent",
		},
		"run_id": map[string]interface{}{
			"type":        "string",
			"description": "Scope to a run",
		},
	}

	withScope := func(extra map[string]interface{}) map[string]interface{} {
		props := map[string]interface{}{}
		for k, v := range scopeProperties {
			props[k] = v
		}
		for k, v := range extra {
			props[k] = v
		}
		return props
	}

	return []MCPTool{
		{
			Name:        "add_memory",
			Description: "Store a new memory from raw text or a list of conversation messages. Facts are extracted automatically and stored as individual records.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withScope(map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw text to memorize",
					},
					"messages": map[string]interface{}{
						"type":        "array",
						"description": "Conversation turns to memorize",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"role":    map[string]interface{}{"type": "string"},
								"content": map[string]interface{}{"type": "string"},
							},
							"required": []string{"content"},
						},
					},
					"metadata": map[string]interface{}{
						"type":        "object",
						"description": "Arbitrary metadata stored alongside each extracted fact",
					},
				}),
			},
		},
		{
			Name:        "search_memories",
			Description: "Semantic search over stored memories. Returns the nearest memories within scope, with graph relations when the graph store is enabled.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"query"},
				"properties": withScope(map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Natural-language search query",
					},
					"filters": map[string]interface{}{
						"type":        "object",
						"description": "Filter expression; a user_id found here scopes the search",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of results (default 10, max 100)",
					},
				}),
			},
		},
		{
			Name:        "get_memories",
			Description: "List stored memories within scope, paginated.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withScope(map[string]interface{}{
					"filters": map[string]interface{}{
						"type":        "object",
						"description": "Filter expression; a user_id found here scopes the listing",
					},
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "1-indexed page number (default 1)",
					},
					"page_size": map[string]interface{}{
						"type":        "integer",
						"description": "Results per page (default 50)",
					},
				}),
			},
		},
		{
			Name:        "get_memory",
			Description: "Fetch a single memory by id.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"memory_id"},
				"properties": map[string]interface{}{
					"memory_id": map[string]interface{}{
						"type":        "string",
						"description": "Memory id",
					},
				},
			},
		},
		{
			Name:        "update_memory",
			Description: "Replace the text of an existing memory. The memory is re-embedded.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"memory_id", "text"},
				"properties": map[string]interface{}{
					"memory_id": map[string]interface{}{
						"type":        "string",
						"description": "Memory id",
					},
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Replacement text",
					},
				},
			},
		},
		{
			Name:        "delete_memory",
			Description: "Delete a single memory by id.",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"memory_id"},
				"properties": map[string]interface{}{
					"memory_id": map[string]interface{}{
						"type":        "string",
						"description": "Memory id",
					},
				},
			},
		},
		{
			Name:        "delete_all_memories",
			Description: "Delete every memory within scope, graph data included.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": withScope(nil),
			},
		},
		{
			Name:        "delete_entities",
			Description: "Cascade delete all records owned by the given user, agent or run, including graph data. Requires an explicit scope.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withScope(map[string]interface{}{
					"app_id": map[string]interface{}{
						"type":        "string",
						"description": "Not supported in self-hosted mode",
					},
				}),
			},
		},
		{
			Name:        "list_entities",
			Description: "List known entities. Not available in self-hosted mode.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
