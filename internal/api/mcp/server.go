package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recallkit/recall/internal/memory"
	"github.com/recallkit/recall/internal/storage"
	"github.com/recallkit/recall/pkg/types"
)

const (
	serverName    = "recall-mcp"
	serverVersion = "1.0.0"

	// protocolVersion is the MCP protocol revision this server speaks.
	protocolVersion = "2024-11-05"
)

// memoryService is the subset of memory.Client used by the MCP server.
// Using an interface keeps the MCP package loosely coupled and testable.
type memoryService interface {
	Add(ctx context.Context, input memory.AddInput) ([]types.MemoryEvent, error)
	Search(ctx context.Context, input memory.SearchInput) (*memory.SearchOutput, error)
	GetAll(ctx context.Context, input memory.GetAllInput) ([]types.Memory, error)
	Get(ctx context.Context, id string) (*types.Memory, error)
	Update(ctx context.Context, id, text string) (map[string]interface{}, error)
	Delete(ctx context.Context, id string) (map[string]interface{}, error)
	DeleteAll(ctx context.Context, scope types.Scope) (map[string]interface{}, error)
	DeleteEntity(ctx context.Context, scope types.Scope, appID string) (map[string]interface{}, error)
	ListEntities(ctx context.Context) (interface{}, error)
}

var _ memoryService = (*memory.Client)(nil)

// Server implements the Model Context Protocol for the memory service.
// It exposes JSON-RPC 2.0 based tools for AI assistants to store and
// retrieve memories.
type Server struct {
	service memoryService

	serverInfo MCPServerInfo
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithServerInfo overrides the name and version reported during initialize.
func WithServerInfo(name, version string) ServerOption {
	return func(s *Server) {
		s.serverInfo = MCPServerInfo{Name: name, Version: version}
	}
}

// NewServer creates a new MCP server over the given memory service.
func NewServer(service memoryService, opts ...ServerOption) *Server {
	s := &Server{
		service:    service,
		serverInfo: MCPServerInfo{Name: serverName, Version: serverVersion},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleRequest processes a JSON-RPC 2.0 request and returns a response.
// This is the main entry point for MCP protocol handling. Notifications
// return a nil response, meaning no frame is written back.
func (s *Server) HandleRequest(ctx context.Context, requestJSON []byte) ([]byte, error) {
	var req JSONRPCRequest
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return s.errorResponse(nil, ErrCodeParseError, "Parse error", err.Error())
	}

	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, ErrCodeInvalidRequest, "Invalid JSON-RPC version", nil)
	}

	// Notifications carry no id and expect no response frame.
	if req.Method == "initialized" || strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	var result interface{}
	var err error

	switch req.Method {
	case "initialize":
		result, err = s.handleInitialize(ctx, req.Params)
	case "tools/list":
		result, err = s.handleToolsList(ctx, req.Params)
	case "tools/call":
		result, err = s.handleToolsCall(ctx, req.Params)
	case "prompts/list":
		result, err = s.handlePromptsList(ctx, req.Params)
	case "prompts/get":
		result, err = s.handlePromptsGet(ctx, req.Params)
	default:
		return s.errorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), nil)
	}

	if err != nil {
		return s.errorResponse(req.ID, ErrCodeServerError, err.Error(), nil)
	}

	return s.successResponse(req.ID, result)
}

// handleInitialize answers the MCP initialize handshake.
func (s *Server) handleInitialize(ctx context.Context, params interface{}) (interface{}, error) {
	return MCPInitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: MCPServerCapabilities{
			Tools:   &MCPToolsCapability{},
			Prompts: &MCPPromptsCapability{},
		},
		ServerInfo: s.serverInfo,
	}, nil
}

// handlePromptsList returns the prompt catalog.
func (s *Server) handlePromptsList(ctx context.Context, params interface{}) (interface{}, error) {
	return MCPPromptsListResult{Prompts: buildPromptsList()}, nil
}

// handlePromptsGet renders one prompt by name.
func (s *Server) handlePromptsGet(ctx context.Context, params interface{}) (interface{}, error) {
	var p MCPPromptGetParams
	if err := s.unmarshalParams(params, &p); err != nil {
		return nil, fmt.Errorf("invalid prompts/get params: %w", err)
	}

	if p.Name != memoryAssistantName {
		return nil, fmt.Errorf("unknown prompt: %s", p.Name)
	}

	return MCPPromptGetResult{
		Description: memoryAssistantDescription,
		Messages: []MCPPromptMessage{
			{
				Role:    "user",
				Content: MCPPromptContent{Type: "text", Text: memoryAssistantText},
			},
		},
	}, nil
}

// handleToolsList returns the tool catalog.
func (s *Server) handleToolsList(ctx context.Context, params interface{}) (interface{}, error) {
	return MCPToolsListResult{Tools: buildToolsList()}, nil
}

// handleToolsCall dispatches a tools/call request to the named tool. Tool
// failures are reported inside the MCPToolCallResult with IsError set, not
// as JSON-RPC protocol errors.
func (s *Server) handleToolsCall(ctx context.Context, params interface{}) (interface{}, error) {
	var p MCPToolCallParams
	if err := s.unmarshalParams(params, &p); err != nil {
		return nil, fmt.Errorf("invalid tools/call params: %w", err)
	}

	args, err := json.Marshal(p.Arguments)
	if err != nil {
		return nil, fmt.Errorf("invalid tool arguments: %w", err)
	}

	raw, callErr := s.callTool(ctx, p.Name, args)
	if callErr != nil {
		return &MCPToolCallResult{
			Content: []MCPToolCallContent{{Type: "text", Text: string(envelopeError(callErr))}},
			IsError: true,
		}, nil
	}

	return &MCPToolCallResult{
		Content: []MCPToolCallContent{{Type: "text", Text: string(raw)}},
	}, nil
}

// callTool runs one tool and envelopes its result.
func (s *Server) callTool(ctx context.Context, name string, args []byte) (json.RawMessage, error) {
	var result interface{}
	var err error

	switch name {
	case "add_memory":
		result, err = s.addMemory(ctx, args)
	case "search_memories":
		result, err = s.searchMemories(ctx, args)
	case "get_memories":
		result, err = s.getMemories(ctx, args)
	case "get_memory":
		result, err = s.getMemory(ctx, args)
	case "update_memory":
		result, err = s.updateMemory(ctx, args)
	case "delete_memory":
		result, err = s.deleteMemory(ctx, args)
	case "delete_all_memories":
		result, err = s.deleteAllMemories(ctx, args)
	case "delete_entities":
		result, err = s.deleteEntities(ctx, args)
	case "list_entities":
		result, err = s.service.ListEntities(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", storage.ErrInvalidInput, name)
	}

	if err != nil {
		return nil, err
	}

	return envelopeResult(result)
}

func (s *Server) addMemory(ctx context.Context, raw []byte) (interface{}, error) {
	var args AddMemoryArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid add_memory arguments: %v", storage.ErrInvalidInput, err)
	}

	messages := make([]types.Message, 0, len(args.Messages))
	for _, m := range args.Messages {
		messages = append(messages, types.Message{Role: m.Role, Content: m.Content})
	}

	return s.service.Add(ctx, memory.AddInput{
		Text:     args.Text,
		Messages: messages,
		Scope:    types.Scope{UserID: args.UserID, AgentID: args.AgentID, RunID: args.RunID},
		Metadata: args.Metadata,
	})
}

func (s *Server) searchMemories(ctx context.Context, raw []byte) (interface{}, error) {
	var args SearchMemoriesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid search_memories arguments: %v", storage.ErrInvalidInput, err)
	}

	return s.service.Search(ctx, memory.SearchInput{
		Query:   args.Query,
		Scope:   types.Scope{UserID: args.UserID, AgentID: args.AgentID, RunID: args.RunID},
		Filters: args.Filters,
		Limit:   args.Limit,
	})
}

func (s *Server) getMemories(ctx context.Context, raw []byte) (interface{}, error) {
	var args GetMemoriesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid get_memories arguments: %v", storage.ErrInvalidInput, err)
	}

	return s.service.GetAll(ctx, memory.GetAllInput{
		Scope:    types.Scope{UserID: args.UserID, AgentID: args.AgentID, RunID: args.RunID},
		Filters:  args.Filters,
		Page:     args.Page,
		PageSize: args.PageSize,
	})
}

func (s *Server) getMemory(ctx context.Context, raw []byte) (interface{}, error) {
	var args MemoryIDArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid get_memory arguments: %v", storage.ErrInvalidInput, err)
	}
	return s.service.Get(ctx, args.MemoryID)
}

func (s *Server) updateMemory(ctx context.Context, raw []byte) (interface{}, error) {
	var args UpdateMemoryArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid update_memory arguments: %v", storage.ErrInvalidInput, err)
	}
	return s.service.Update(ctx, args.MemoryID, args.Text)
}

func (s *Server) deleteMemory(ctx context.Context, raw []byte) (interface{}, error) {
	var args MemoryIDArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid delete_memory arguments: %v", storage.ErrInvalidInput, err)
	}
	return s.service.Delete(ctx, args.MemoryID)
}

func (s *Server) deleteAllMemories(ctx context.Context, raw []byte) (interface{}, error) {
	var args DeleteAllMemoriesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid delete_all_memories arguments: %v", storage.ErrInvalidInput, err)
	}
	return s.service.DeleteAll(ctx, types.Scope{UserID: args.UserID, AgentID: args.AgentID, RunID: args.RunID})
}

func (s *Server) deleteEntities(ctx context.Context, raw []byte) (interface{}, error) {
	var args DeleteEntitiesArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("%w: invalid delete_entities arguments: %v", storage.ErrInvalidInput, err)
	}
	scope := types.Scope{UserID: args.UserID, AgentID: args.AgentID, RunID: args.RunID}
	return s.service.DeleteEntity(ctx, scope, args.AppID)
}

// unmarshalParams unmarshals JSON-RPC parameters into a typed struct.
func (s *Server) unmarshalParams(params interface{}, dest interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}

	return nil
}

// successResponse creates a JSON-RPC success response.
func (s *Server) successResponse(id interface{}, result interface{}) ([]byte, error) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return json.Marshal(resp)
}

// errorResponse creates a JSON-RPC error response.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) ([]byte, error) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
	return json.Marshal(resp)
}
