package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/auth"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/logging"
	"github.com/Sigfried/dynamic-model-var-docs-sub004/internal/storage"
)

var (
	tokenCreateName  string
	tokenCreateFmt   string
	tokenListFmt     string
	tokenShowRevoked bool
)

// tokenInfoCLI is a token record shaped for CLI output. Hashes never appear.
type tokenInfoCLI struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prefix     string `json:"prefix"`
	CreatedAt  string `json:"createdAt"`
	LastUsedAt string `json:"lastUsedAt,omitempty"`
	Revoked    bool   `json:"revoked,omitempty"`
	RevokedAt  string `json:"revokedAt,omitempty"`
}

func tokenInfo(rec storage.TokenRecord) tokenInfoCLI {
	info := tokenInfoCLI{
		ID:        rec.ID,
		Name:      rec.Name,
		Prefix:    rec.TokenPrefix,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		Revoked:   rec.Revoked,
	}
	if rec.LastUsedAt != nil {
		info.LastUsedAt = rec.LastUsedAt.UTC().Format(time.RFC3339)
	}
	if rec.RevokedAt != nil {
		info.RevokedAt = rec.RevokedAt.UTC().Format(time.RFC3339)
	}
	return info
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens for mutating endpoints",
	Long: `Token manages the API tokens that guard mutating HTTP endpoints.
Tokens are shown once at creation; only a hash is stored.`,
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new API token",
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newLogger(tokenCreateFmt)
		manager := mustGetAuthManager(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		rec, rawToken, err := manager.Create(ctx, tokenCreateName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating token: %v\n", err)
			os.Exit(1)
		}

		if tokenCreateFmt == "json" {
			printJSON(struct {
				tokenInfoCLI
				Token string `json:"token"`
			}{tokenInfo(*rec), rawToken})
			return
		}

		fmt.Printf("✓ Token created: %s\n", rec.Name)
		fmt.Printf("  ID:     %s\n", rec.ID)
		fmt.Printf("  Token:  %s\n", rawToken)
		fmt.Println()
		fmt.Println("IMPORTANT: Store this token securely. It will not be shown again.")
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List API tokens",
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newLogger(tokenListFmt)
		manager := mustGetAuthManager(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		records, err := manager.List(ctx, tokenShowRevoked)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing tokens: %v\n", err)
			os.Exit(1)
		}

		if tokenListFmt == "json" {
			infos := make([]tokenInfoCLI, 0, len(records))
			for _, rec := range records {
				infos = append(infos, tokenInfo(rec))
			}
			printJSON(infos)
			return
		}

		fmt.Printf("API Tokens (%d)\n%s\n", len(records), strings.Repeat("=", 60))
		if len(records) == 0 {
			fmt.Println("No tokens issued. Create one with 'modeldocs token create --name <name>'.")
			return
		}
		fmt.Printf("%-26s %-20s %-10s %-12s %s\n", "ID", "NAME", "PREFIX", "CREATED", "LAST USED")
		for _, rec := range records {
			lastUsed := "never"
			if rec.LastUsedAt != nil {
				lastUsed = formatTimeAgo(*rec.LastUsedAt)
			}
			name := rec.Name
			if rec.Revoked {
				name += " (revoked)"
			}
			fmt.Printf("%-26s %-20s %-10s %-12s %s\n",
				rec.ID, name, rec.TokenPrefix, formatTimeAgo(rec.CreatedAt), lastUsed)
		}
	},
}

var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke <token-id>",
	Short: "Revoke a token without deleting its record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newLogger("human")
		manager := mustGetAuthManager(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		if err := manager.Revoke(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error revoking token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Token revoked: %s\n", args[0])
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete <token-id>",
	Short: "Permanently delete a token record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newLogger("human")
		manager := mustGetAuthManager(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		if err := manager.Delete(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error deleting token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ Token deleted: %s\n", args[0])
	},
}

var tokenVerifyCmd = &cobra.Command{
	Use:   "verify <token>",
	Short: "Check whether a token authenticates",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := mustGetWorkspaceRoot()
		logger := newLogger("human")
		manager := mustGetAuthManager(root, logger)

		ctx, cancel := newContext()
		defer cancel()

		result := manager.Authenticate(ctx, args[0])
		if !result.Authenticated {
			fmt.Printf("✗ Token invalid: %s\n", result.ErrorMessage)
			os.Exit(1)
		}
		fmt.Printf("✓ Token valid: %s (%s)\n", result.TokenName, result.TokenID)
	},
}

// mustGetAuthManager opens the workspace database and builds a token manager.
// Token commands have no degraded mode; without the database they exit.
func mustGetAuthManager(root string, logger *logging.Logger) *auth.Manager {
	db, err := storage.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening workspace database: %v\n", err)
		os.Exit(1)
	}
	return auth.NewManager(storage.NewTokenStore(db), logger)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// formatTimeAgo renders a timestamp as a rough age.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenRevokeCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	tokenCmd.AddCommand(tokenVerifyCmd)

	tokenCreateCmd.Flags().StringVar(&tokenCreateName, "name", "", "Token name (e.g. ci-deploy)")
	tokenCreateCmd.Flags().StringVar(&tokenCreateFmt, "format", "human", "Output format: json or human")
	tokenCreateCmd.MarkFlagRequired("name")

	tokenListCmd.Flags().StringVar(&tokenListFmt, "format", "human", "Output format: json or human")
	tokenListCmd.Flags().BoolVar(&tokenShowRevoked, "show-revoked", false, "Include revoked tokens")
}
