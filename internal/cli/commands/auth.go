package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/openfga-dslc/openfga-dslc/internal/web/auth"
)

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage local auth credentials for fgac serve",
	}

	cmd.AddCommand(newAuthHashTokenCommand())
	return cmd
}

func newAuthHashTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-token",
		Short: "Hash a shared API token for FGAC_LOCAL_TOKEN_HASH",
		Long: `Prompts for a shared API token and prints its bcrypt hash.

Set the output as FGAC_LOCAL_TOKEN_HASH when running "fgac serve" with
"auth: local" in fgac.yml; clients then authenticate with
"Authorization: Bearer <token>" using the plain token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			prompt := &survey.Password{Message: "API token:"}
			if err := survey.AskOne(prompt, &token); err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}

			hash, err := auth.HashPassword(token)
			if err != nil {
				return fmt.Errorf("failed to hash token: %w", err)
			}

			color.New(color.FgGreen).Println("FGAC_LOCAL_TOKEN_HASH=" + hash)
			return nil
		},
	}
}
