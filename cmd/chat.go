package cmd

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/taskagent/pkg/client"
	"github.com/theapemachine/taskagent/pkg/tasks"
	"github.com/theapemachine/taskagent/pkg/ui"
)

var (
	chatURLFlag   string
	chatTokenFlag string

	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Open the terminal chat client",
		Long:  longChat,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path := os.Getenv("TEA_LOGFILE"); path != "" {
				f, err := tea.LogToFile(path, projectName)

				if err != nil {
					return err
				}

				defer f.Close()
			}

			url, token := viper.GetString("client.url"), viper.GetString("client.token")

			if chatURLFlag != "" {
				url = chatURLFlag
			}

			if chatTokenFlag != "" {
				token = chatTokenFlag
			}

			backend := client.NewChatClient(url, client.WithToken(token))
			model := ui.New(backend, tasks.LoadZone(viper.GetString("chat.timezone")))

			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				log.Error("error while running program", "error", err)
				return err
			}

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatURLFlag, "url", "", "chat API base URL (overrides client.url)")
	chatCmd.Flags().StringVar(&chatTokenFlag, "token", "", "bearer token (overrides client.token)")
}

var longChat = `
Open a terminal chat against a running taskagent server.

Examples:
  # Talk to a local server with a freshly minted token
  taskagent chat --token "$(taskagent token --user ana)"
`
