package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/theapemachine/taskagent/pkg/auth"
)

var (
	tokenUserFlag string
	tokenJSONFlag bool

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenUserFlag == "" {
				return errors.New("--user is required")
			}

			service := auth.NewService(
				[]byte(viper.GetString("auth.signing_key")),
				auth.WithTokenTTL(viper.GetDuration("auth.token_ttl")),
			)

			info, err := service.GenerateToken(tokenUserFlag)

			if err != nil {
				return err
			}

			if tokenJSONFlag {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}

			fmt.Fprintln(cmd.OutOrStdout(), info.Token)

			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenUserFlag, "user", "u", "", "user id to put in the sub claim")
	tokenCmd.Flags().BoolVar(&tokenJSONFlag, "json", false, "print the full token info as JSON")
}
