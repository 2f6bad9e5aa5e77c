package mcp

// memoryAssistantPrompt gives clients usage guidance for the memory tools.
const (
	memoryAssistantName        = "memory_assistant"
	memoryAssistantDescription = "Get help with memory operations and best practices."

	memoryAssistantText = `You are using the Recall MCP server for long-term memory management.

Quick Start:
1. Store memories: Use add_memory to save facts, preferences, or conversations
2. Search memories: Use search_memories for semantic queries
3. List memories: Use get_memories for filtered browsing
4. Update/Delete: Use update_memory and delete_memory for modifications

Filter Examples:
- User memories: {"AND": [{"user_id": "john"}]}
- Agent memories: {"AND": [{"agent_id": "agent_name"}]}

Tips:
- user_id is automatically added to filters
- A user_id found inside filters scopes the call when no explicit scope is set
- Combine filters with AND/OR for complex queries`
)

// buildPromptsList returns the catalog served by prompts/list.
func buildPromptsList() []MCPPrompt {
	return []MCPPrompt{
		{
			Name:        memoryAssistantName,
			Description: memoryAssistantDescription,
		},
	}
}
