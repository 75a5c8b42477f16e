package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/theapemachine/taskagent/pkg/tools"
)

var (
	mcpUserFlag string

	mcpCmd = &cobra.Command{
		Use:   "mcp",
		Short: "Serve the chat as MCP tools over stdio",
		Long:  longMCP,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(cmd.Context())

			if err != nil {
				return err
			}

			defer rt.Close()

			for _, loop := range rt.background {
				go func() {
					if err := loop(cmd.Context()); err != nil {
						log.Error("background loop stopped", "error", err)
					}
				}()
			}

			chatTools := tools.NewChatTools(rt.assistant, rt.executor, mcpUserFlag)

			return server.ServeStdio(chatTools.NewServer(projectName, "0.1.0"))
		},
	}
)

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVarP(&mcpUserFlag, "user", "u", "local", "user id for calls that do not pass user_id")
}

var longMCP = `
Serve the assistant as an MCP server on stdin/stdout.

Tools: send_message, execute_action, get_history, clear_history,
agent_status and list_tasks. Set logging.file so log lines do not end up
on the transport.

Examples:
  taskagent mcp --user ana
`
