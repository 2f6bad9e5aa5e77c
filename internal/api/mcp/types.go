// Package mcp implements the Model Context Protocol (MCP) server for Recall.
// It provides JSON-RPC 2.0 based tools for storing, retrieving, and searching
// memories.
package mcp

// AddMemoryArgs contains arguments for the add_memory tool. Exactly one of
// Text or Messages should be provided.
type AddMemoryArgs struct {
	Text     string                 `json:"text,omitempty"`     // Raw text to memorize
	Messages []MessageArg           `json:"messages,omitempty"` // Conversation turns to memorize
	UserID   string                 `json:"user_id,omitempty"`  // Owner user id
	AgentID  string                 `json:"agent_id,omitempty"` // Owner agent id
	RunID    string                 `json:"run_id,omitempty"`   // Owner run id
	Metadata map[string]interface{} `json:"metadata,omitempty"` // Arbitrary metadata stored alongside each fact
}

// MessageArg is a single conversation turn passed to add_memory.
type MessageArg struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

// SearchMemoriesArgs contains arguments for the search_memories tool.
type SearchMemoriesArgs struct {
	Query   string                 `json:"query"`              // Natural-language search query (required)
	UserID  string                 `json:"user_id,omitempty"`  // Scope to a user
	AgentID string                 `json:"agent_id,omitempty"` // Scope to an agent
	RunID   string                 `json:"run_id,omitempty"`   // Scope to a run
	Filters map[string]interface{} `json:"filters,omitempty"`  // Filter expression; a user_id found here scopes the search
	Limit   int                    `json:"limit,omitempty"`    // Max results (default 10, max 100)
}

// GetMemoriesArgs contains arguments for the get_memories tool.
type GetMemoriesArgs struct {
	UserID   string                 `json:"user_id,omitempty"`
	AgentID  string                 `json:"agent_id,omitempty"`
	RunID    string                 `json:"run_id,omitempty"`
	Filters  map[string]interface{} `json:"filters,omitempty"`
	Page     int                    `json:"page,omitempty"`      // 1-indexed page (default 1)
	PageSize int                    `json:"page_size,omitempty"` // Page size (default 50)
}

// MemoryIDArgs contains arguments for tools addressing a single memory
// (get_memory, delete_memory).
type MemoryIDArgs struct {
	MemoryID string `json:"memory_id"` // Memory id (required)
}

// UpdateMemoryArgs contains arguments for the update_memory tool.
type UpdateMemoryArgs struct {
	MemoryID string `json:"memory_id"` // Memory id (required)
	Text     string `json:"text"`      // Replacement text (required)
}

// DeleteAllMemoriesArgs contains arguments for the delete_all_memories tool.
type DeleteAllMemoriesArgs struct {
	UserID  string `json:"user_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	RunID   string `json:"run_id,omitempty"`
}

// DeleteEntitiesArgs contains arguments for the delete_entities tool.
// At least one scope id is required; app_id is rejected in self-hosted mode.
type DeleteEntitiesArgs struct {
	UserID  string `json:"user_id,omitempty"`
	AgentID string `json:"agent_id,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	AppID   string `json:"app_id,omitempty"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"` // Must be "2.0"
	Method  string      `json:"method"`  // Method name
	Params  interface{} `json:"params"`  // Method parameters
	ID      interface{} `json:"id"`      // Request ID (string, number, or null)
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`          // Must be "2.0"
	Result  interface{}   `json:"result,omitempty"` // Result (if successful)
	Error   *JSONRPCError `json:"error,omitempty"`  // Error (if failed)
	ID      interface{}   `json:"id"`               // Request ID
}

// JSONRPCError represents a JSON-RPC 2.0 error.
type JSONRPCError struct {
	Code    int         `json:"code"`           // Error code
	Message string      `json:"message"`        // Error message
	Data    interface{} `json:"data,omitempty"` // Additional error data
}

// JSON-RPC error codes
const (
	ErrCodeParseError     = -32700 // Invalid JSON
	ErrCodeInvalidRequest = -32600 // Invalid request object
	ErrCodeMethodNotFound = -32601 // Method not found
	ErrCodeInvalidParams  = -32602 // Invalid method parameters
	ErrCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrCodeServerError    = -32000 // Server error
)

// ---------------------------------------------------------------------------
// Standard MCP protocol types (initialize / tools/list / tools/call)
// ---------------------------------------------------------------------------

// MCPInitializeParams holds the parameters sent by an MCP client in the
// initialize request.
type MCPInitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities,omitempty"`
	ClientInfo      MCPClientInfo          `json:"clientInfo"`
}

// MCPClientInfo identifies the connecting MCP client.
type MCPClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPServerInfo identifies this MCP server.
type MCPServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MCPServerCapabilities describes what this server supports.
type MCPServerCapabilities struct {
	Tools   *MCPToolsCapability   `json:"tools,omitempty"`
	Prompts *MCPPromptsCapability `json:"prompts,omitempty"`
}

// MCPToolsCapability signals that the server exposes tools.
type MCPToolsCapability struct{}

// MCPPromptsCapability signals that the server exposes prompts.
type MCPPromptsCapability struct{}

// MCPInitializeResult is the response to the initialize request.
type MCPInitializeResult struct {
	ProtocolVersion string                `json:"protocolVersion"`
	Capabilities    MCPServerCapabilities `json:"capabilities"`
	ServerInfo      MCPServerInfo         `json:"serverInfo"`
}

// MCPTool describes a single tool exposed via the MCP tools/list endpoint.
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// MCPToolsListResult is the response to the tools/list request.
type MCPToolsListResult struct {
	Tools []MCPTool `json:"tools"`
}

// MCPPrompt describes a single prompt exposed via the MCP prompts/list
// endpoint.
type MCPPrompt struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MCPPromptsListResult is the response to the prompts/list request.
type MCPPromptsListResult struct {
	Prompts []MCPPrompt `json:"prompts"`
}

// MCPPromptGetParams holds the parameters sent in a prompts/get request.
type MCPPromptGetParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// MCPPromptContent is the content block of a prompt message.
type MCPPromptContent struct {
	Type string `json:"type"` // always "text" for now
	Text string `json:"text"`
}

// MCPPromptMessage is a single message in a prompts/get response.
type MCPPromptMessage struct {
	Role    string           `json:"role"`
	Content MCPPromptContent `json:"content"`
}

// MCPPromptGetResult is the response to a prompts/get request.
type MCPPromptGetResult struct {
	Description string             `json:"description,omitempty"`
	Messages    []MCPPromptMessage `json:"messages"`
}

// MCPToolCallParams holds the parameters sent in a tools/call request.
type MCPToolCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// MCPToolCallContent is a single content block in a tool call response.
type MCPToolCallContent struct {
	Type string `json:"type"` // always "text" for now
	Text string `json:"text"`
}

// MCPToolCallResult is the response to a tools/call request.
type MCPToolCallResult struct {
	Content []MCPToolCallContent `json:"content"`
	IsError bool                 `json:"isError,omitempty"`
}
