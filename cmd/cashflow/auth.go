package main

import (
	"fmt"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/config"
	"github.com/Veraticus/cashflow/internal/sheets"
	"github.com/spf13/cobra"
)

func authCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd(env))

	return cmd
}

func authSheetsCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets",
		Short: "Authorize Google Sheets export with your Google account",
		Long: `Run the OAuth consent flow in your browser and store the resulting token.

Requires sheets.client_id and sheets.client_secret (or GOOGLE_SHEETS_CLIENT_ID
and GOOGLE_SHEETS_CLIENT_SECRET) from a Google Cloud "Desktop app" OAuth
client whose redirect URIs include http://localhost:8080/callback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oauthCfg, err := config.LoadSheetsOAuth(env.v)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			token, err := sheets.Authenticate(cmd.Context(), *oauthCfg, func(url string) {
				printLine(out, cli.FormatInfo("Open this URL in your browser to authorize access:"))
				printLine(out, url)
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			if token.RefreshToken == "" {
				return fmt.Errorf("google returned no refresh token; revoke the app's access and try again")
			}

			printLine(out, cli.FormatSuccess("Google Sheets authorized. Token saved to "+oauthCfg.TokenFile))
			return nil
		},
	}
}
