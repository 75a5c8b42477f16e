/*
Package cmd implements the command-line interface of the task assistant.
It wires configuration, logging and the concrete adapters behind the chat
core into the serve, mcp, chat and token commands.
*/
package cmd

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/taskagent/pkg/logging"
)

/*
Embed a mini filesystem into the binary to hold the default config file.
This will be written to the home directory of the user running the service,
which allows a developer to easily override the config file.
*/
//go:embed cfg/*
var embedded embed.FS

var (
	projectName = "taskagent"
	cfgFile     string
	logLevel    string

	rootCmd = &cobra.Command{
		Use:   projectName,
		Short: "A pt-BR chat assistant for managing personal tasks",
		Long:  longRoot,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				viper.Set("logging.level", logLevel)
			}

			return logging.Init(logging.Config{
				Level:     viper.GetString("logging.level"),
				Formatter: viper.GetString("logging.formatter"),
				File:      viper.GetString("logging.file"),
			})
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yml",
		"config file (default is $HOME/."+projectName+"/config.yml)",
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

/*
initConfig writes the default config file to the user's home directory if it
doesn't exist, then reads it.  Every key can be overridden from the
environment with the TASKAGENT_ prefix, e.g. TASKAGENT_SERVER_PORT.
*/
func initConfig() {
	if err := writeConfig(); err != nil {
		log.Fatal("could not write default config", "error", err)
	}

	viper.SetConfigName(strings.TrimSuffix(cfgFile, filepath.Ext(cfgFile)))
	viper.SetConfigType("yml")
	viper.AddConfigPath(configDir())

	viper.SetEnvPrefix(strings.ToUpper(projectName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal("could not read config", "error", err)
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "."+projectName)
}

// writeConfig copies the embedded default config into place on first run.
func writeConfig() (err error) {
	var (
		dir = configDir()
		fh  fs.File
		buf bytes.Buffer
	)

	if !CheckFileExists(dir) {
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	fullPath := filepath.Join(dir, cfgFile)

	if CheckFileExists(fullPath) {
		return nil
	}

	if fh, err = embedded.Open("cfg/config.yml"); err != nil {
		return fmt.Errorf("failed to open embedded config file: %w", err)
	}

	defer fh.Close()

	if _, err = io.Copy(&buf, fh); err != nil {
		return fmt.Errorf("failed to read embedded config file: %w", err)
	}

	if err = os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info("wrote config file", "path", fullPath)

	return nil
}

func CheckFileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !errors.Is(err, os.ErrNotExist)
}

var longRoot = `
taskagent is a conversational assistant, in Brazilian Portuguese, that lists,
creates, completes, updates and deletes your tasks. Mutating actions always
go through an explicit confirmation step.
`
