package tools

// Chat tools expose the assistant to MCP hosts.  Every tool takes the user
// the turn belongs to; hosts that speak for a single user can leave it out
// and the configured default is used.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/prompts"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

// Snapshots supplies the task list each chat turn is answered against.
type Snapshots interface {
	ListForUser(ctx context.Context, userID string) ([]tasks.Task, error)
}

type ChatTools struct {
	assistant   *chat.Assistant
	snapshots   Snapshots
	defaultUser string
}

func NewChatTools(assistant *chat.Assistant, snapshots Snapshots, defaultUser string) *ChatTools {
	return &ChatTools{
		assistant:   assistant,
		snapshots:   snapshots,
		defaultUser: defaultUser,
	}
}

// NewServer builds an MCP server carrying the chat tools and the prompt catalog.
func (ct *ChatTools) NewServer(name, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		name,
		version,
		server.WithLogging(),
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
	)

	ct.Register(srv)

	handler := prompts.NewMCPHandler()

	for _, prompt := range handler.Prompts() {
		srv.AddPrompt(prompt, handler.HandleGetPrompt)
	}

	return srv
}

func (ct *ChatTools) Register(srv *server.MCPServer) {
	srv.AddTool(buildSendMessageTool(), ct.handleSendMessage)
	srv.AddTool(buildExecuteActionTool(), ct.handleExecuteAction)
	srv.AddTool(buildUserTool("get_history", "Returns the conversation history of the user."), ct.handleGetHistory)
	srv.AddTool(buildUserTool("clear_history", "Forgets the conversation and anything pending confirmation."), ct.handleClearHistory)
	srv.AddTool(buildUserTool("agent_status", "Reports the dialogue mode, pending action and executed actions."), ct.handleStatus)
	srv.AddTool(buildUserTool("list_tasks", "Lists the tasks of the user."), ct.handleListTasks)
}

func userOption() mcp.ToolOption {
	return mcp.WithString("user_id",
		mcp.Description("User the conversation belongs to. Defaults to the server's configured user."),
	)
}

func buildSendMessageTool() mcp.Tool {
	return mcp.NewTool(
		"send_message",
		mcp.WithDescription("Sends a message (in Portuguese) to the task assistant and returns its reply as JSON. Mutations are only proposed; run them with execute_action."),
		userOption(),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("What the user said"),
		),
	)
}

func buildExecuteActionTool() mcp.Tool {
	return mcp.NewTool(
		"execute_action",
		mcp.WithDescription("Runs an action the assistant asked to confirm. Only the pending confirmation for the same task is accepted."),
		userOption(),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Action to run"),
			mcp.Enum(types.ActionCreate, types.ActionComplete, types.ActionDelete, types.ActionUpdateStatus, types.ActionCancel),
		),
		mcp.WithString("task_id",
			mcp.Description("Target task, required for complete, delete and update_status"),
		),
		mcp.WithObject("task_data",
			mcp.Description("Create payload (title, priority, due_date) or the target status"),
		),
	)
}

func buildUserTool(name, description string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(description), userOption())
}

func (ct *ChatTools) user(req mcp.CallToolRequest) string {
	return req.GetString("user_id", ct.defaultUser)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(raw)), nil
}

func (ct *ChatTools) handleSendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	userID := ct.user(req)
	snapshot, err := ct.snapshots.ListForUser(ctx, userID)

	if err != nil {
		log.Error("task snapshot failed", "user", userID, "error", err)
		return mcp.NewToolResultError("could not load tasks"), nil
	}

	response, err := ct.assistant.ProcessMessage(ctx, userID, message, snapshot)

	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chat turn failed: %v", err)), nil
	}

	return jsonResult(response)
}

func (ct *ChatTools) handleExecuteAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action, err := req.RequireString("action")

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	request := types.ActionRequest{
		Action: action,
		TaskID: req.GetString("task_id", ""),
	}

	if data, ok := req.GetArguments()["task_data"].(map[string]any); ok {
		request.TaskData = data
	}

	result, err := ct.assistant.ExecuteAction(ctx, ct.user(req), request)

	if err != nil {
		log.Warn("mcp action refused", "action", action, "error", err)
	}

	return jsonResult(result)
}

func (ct *ChatTools) handleGetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := ct.assistant.History(ctx, ct.user(req))

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if history == nil {
		history = []types.ConversationTurn{}
	}

	return jsonResult(history)
}

func (ct *ChatTools) handleClearHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := ct.assistant.ClearHistory(ctx, ct.user(req)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Histórico limpo com sucesso"), nil
}

func (ct *ChatTools) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := ct.assistant.Status(ctx, ct.user(req))

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(status)
}

func (ct *ChatTools) handleListTasks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := ct.snapshots.ListForUser(ctx, ct.user(req))

	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(snapshot)
}
