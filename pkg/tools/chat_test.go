package tools

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/stores/memory"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
)

func newChatTools() (*ChatTools, *memory.TaskRepository) {
	zone := tasks.LoadZone(tasks.DefaultZone)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, zone)

	repo := memory.NewTaskRepository(
		tasks.Task{ID: "A", UserID: "ana", Title: "Revisar PR", Status: tasks.StatusTodo},
		tasks.Task{ID: "B", UserID: "ana", Title: "Build", Status: tasks.StatusTodo},
	)

	executor := tasks.NewExecutor(repo)

	assistant := chat.NewAssistant(
		chat.WithActionExecutor(executor),
		chat.WithClock(func() time.Time { return now }),
		chat.WithLocation(zone),
		chat.WithRand(rand.New(rand.NewPCG(3, 4))),
	)

	return NewChatTools(assistant, executor, "ana"), repo
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)

	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	return content.Text
}

func TestSendMessageThenExecute(t *testing.T) {
	ct, repo := newChatTools()
	ctx := context.Background()

	result, err := ct.handleSendMessage(ctx, call("send_message", map[string]any{"message": "deletar uma"}))
	require.NoError(t, err)

	var reply types.Response
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &reply))
	assert.Equal(t, "select_delete", reply.Action)

	result, err = ct.handleSendMessage(ctx, call("send_message", map[string]any{"message": "2"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &reply))
	assert.True(t, reply.RequiresConfirmation)

	result, err = ct.handleExecuteAction(ctx, call("execute_action", map[string]any{
		"action":  types.ActionDelete,
		"task_id": "B",
	}))
	require.NoError(t, err)

	var outcome types.ActionResult
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &outcome))
	assert.True(t, outcome.Success)

	remaining, err := repo.ListForUser(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "A", remaining[0].ID)
}

func TestSendMessageRequiresMessage(t *testing.T) {
	ct, _ := newChatTools()

	result, err := ct.handleSendMessage(context.Background(), call("send_message", map[string]any{}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHistoryTools(t *testing.T) {
	ct, _ := newChatTools()
	ctx := context.Background()

	_, err := ct.handleSendMessage(ctx, call("send_message", map[string]any{"message": "oi", "user_id": "bruno"}))
	require.NoError(t, err)

	result, err := ct.handleGetHistory(ctx, call("get_history", map[string]any{"user_id": "bruno"}))
	require.NoError(t, err)

	var history []types.ConversationTurn
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &history))
	assert.Len(t, history, 2)

	result, err = ct.handleGetHistory(ctx, call("get_history", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "[]", text(t, result))

	_, err = ct.handleClearHistory(ctx, call("clear_history", map[string]any{"user_id": "bruno"}))
	require.NoError(t, err)

	result, err = ct.handleStatus(ctx, call("agent_status", map[string]any{"user_id": "bruno"}))
	require.NoError(t, err)

	var status chat.AgentStatus
	require.NoError(t, json.Unmarshal([]byte(text(t, result)), &status))
	assert.Equal(t, 0, status.HistorySize)
}

func TestNewServerRegistersTools(t *testing.T) {
	ct, _ := newChatTools()

	srv := ct.NewServer("taskagent", "test")
	ctx := context.Background()

	reply := srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(reply)
	require.NoError(t, err)

	for _, name := range []string{"send_message", "execute_action", "get_history", "clear_history", "agent_status", "list_tasks"} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}

	reply = srv.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`))
	raw, err = json.Marshal(reply)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "intent-classifier")
}
