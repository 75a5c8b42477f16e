package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// MCPHandler serves the prompt catalog over prompts/list and prompts/get.
type MCPHandler struct{}

func NewMCPHandler() *MCPHandler { return &MCPHandler{} }

func (h *MCPHandler) HandleListPrompts(
	ctx context.Context, _ *mcp.ListPromptsRequest,
) (*mcp.ListPromptsResult, error) {
	all := List()
	out := make([]mcp.Prompt, len(all))

	for i, prompt := range all {
		out[i] = mcp.NewPrompt(prompt.Name, mcp.WithPromptDescription(prompt.Description))
	}

	return mcp.NewListPromptsResult(out, ""), nil
}

// HandleGetPrompt returns the full text as a single system-style message.
func (h *MCPHandler) HandleGetPrompt(
	ctx context.Context, req mcp.GetPromptRequest,
) (*mcp.GetPromptResult, error) {
	prompt, err := Get(req.Params.Name)

	if err != nil {
		return nil, err
	}

	return mcp.NewGetPromptResult(prompt.Description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleAssistant, mcp.NewTextContent(prompt.Content)),
	}), nil
}

// Prompts lists the catalog in the shape server.AddPrompt expects.
func (h *MCPHandler) Prompts() []mcp.Prompt {
	all := List()
	out := make([]mcp.Prompt, len(all))

	for i, prompt := range all {
		out[i] = mcp.NewPrompt(prompt.Name, mcp.WithPromptDescription(prompt.Description))
	}

	return out
}
