package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	fiberclient "github.com/gofiber/fiber/v3/client"
	"github.com/theapemachine/taskagent/pkg/chat"
	"github.com/theapemachine/taskagent/pkg/errors"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/types"
	"github.com/theapemachine/taskagent/pkg/utils"
)

// ChatClient talks to the chat API of a running taskagent server.
type ChatClient struct {
	http    *fiberclient.Client
	baseURL string
	token   string
	stream  *http.Client
}

type ChatClientOption func(*ChatClient)

func WithToken(token string) ChatClientOption {
	return func(client *ChatClient) {
		client.token = token
	}
}

func WithTimeout(timeout time.Duration) ChatClientOption {
	return func(client *ChatClient) {
		client.http.SetTimeout(timeout)
	}
}

func NewChatClient(baseURL string, options ...ChatClientOption) *ChatClient {
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := &ChatClient{
		http:    fiberclient.New().SetBaseURL(baseURL).SetTimeout(60 * time.Second),
		baseURL: baseURL,
		stream:  &http.Client{},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

func (client *ChatClient) config(ctx context.Context, body any) fiberclient.Config {
	config := fiberclient.Config{
		Ctx:    ctx,
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   body,
	}

	if client.token != "" {
		config.Header["Authorization"] = "Bearer " + client.token
	}

	return config
}

/*
decode reads a JSON body into out.  Non-2xx answers are turned into an
*errors.APIError unless acceptStatus says the body is still meaningful.
*/
func decode(resp *fiberclient.Response, out any, acceptStatus ...int) error {
	defer resp.Close()

	status := resp.StatusCode()
	accepted := status >= 200 && status < 300

	for _, code := range acceptStatus {
		accepted = accepted || code == status
	}

	if !accepted {
		apiErr := &errors.APIError{Code: status}

		if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(resp.Body()))
		}

		apiErr.Code = status

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %d response: %w", status, err)
	}

	return nil
}

// Send posts one chat message and returns the assistant's reply.
func (client *ChatClient) Send(ctx context.Context, message string) (types.Response, error) {
	var reply types.Response

	resp, err := client.http.Post("/api/chat", client.config(ctx, map[string]string{"message": message}))

	if err != nil {
		return reply, fmt.Errorf("send message: %w", err)
	}

	err = decode(resp, &reply)

	return reply, err
}

/*
Execute posts a confirmed action.  A rejected confirmation still carries a
displayable ActionResult, so it is returned next to the error.
*/
func (client *ChatClient) Execute(ctx context.Context, request types.ActionRequest) (types.ActionResult, error) {
	var result types.ActionResult

	resp, err := client.http.Post("/api/chat/action", client.config(ctx, request))

	if err != nil {
		return result, fmt.Errorf("execute action: %w", err)
	}

	err = decode(resp, &result, http.StatusConflict)

	if err == nil && !result.Success {
		log.Debug("action refused", "action", request.Action, "message", result.Message)
	}

	return result, err
}

func (client *ChatClient) History(ctx context.Context) ([]types.ConversationTurn, error) {
	var out struct {
		History []types.ConversationTurn `json:"history"`
	}

	resp, err := client.http.Get("/api/chat/history", client.config(ctx, nil))

	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	err = decode(resp, &out)

	return out.History, err
}

func (client *ChatClient) ClearHistory(ctx context.Context) error {
	resp, err := client.http.Delete("/api/chat/history", client.config(ctx, nil))

	if err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	return decode(resp, nil)
}

func (client *ChatClient) Status(ctx context.Context) (chat.AgentStatus, error) {
	var status chat.AgentStatus

	resp, err := client.http.Get("/api/agent/status", client.config(ctx, nil))

	if err != nil {
		return status, fmt.Errorf("load status: %w", err)
	}

	err = decode(resp, &status)

	return status, err
}

func (client *ChatClient) Tasks(ctx context.Context) ([]tasks.Task, error) {
	var out struct {
		Tasks []tasks.Task `json:"tasks"`
	}

	resp, err := client.http.Get("/api/tasks", client.config(ctx, nil))

	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	err = decode(resp, &out)

	return out.Tasks, err
}

/*
Events follows the audit stream and calls fn for each executed action until
ctx is cancelled or the server closes the stream.  The fiber client buffers
whole bodies, so the stream is read with net/http.
*/
func (client *ChatClient) Events(ctx context.Context, fn func(types.AuditEntry)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/api/events", nil)

	if err != nil {
		return err
	}

	req.Header.Set("Accept", "text/event-stream")

	if client.token != "" {
		req.Header.Set("Authorization", "Bearer "+client.token)
	}

	resp, err := client.stream.Do(req)

	if err != nil {
		return fmt.Errorf("open event stream: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &errors.APIError{Code: resp.StatusCode, Message: "event stream refused"}
	}

	reader := bufio.NewReader(resp.Body)

	for {
		data, err := utils.ReadSSE(reader)

		if err == io.EOF || ctx.Err() != nil {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read event stream: %w", err)
		}

		if data == "" {
			continue
		}

		var entry types.AuditEntry

		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			log.Warn("skipping malformed audit event", "error", err)
			continue
		}

		fn(entry)
	}
}
