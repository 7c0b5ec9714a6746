package cmd

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/solatis/subordinate/internal/core/auth"
	"github.com/solatis/subordinate/internal/core/config"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue an API key for a tenant",
	Args:  cobra.NoArgs,
	RunE:  runKeysCreate,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's API keys",
	Args:  cobra.NoArgs,
	RunE:  runKeysList,
}

var keysRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysRevoke,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd, keysListCmd, keysRevokeCmd)
	keysCmd.PersistentFlags().String("tenant", "", "tenant ID")
	keysCmd.MarkPersistentFlagRequired("tenant")
	keysCreateCmd.Flags().String("name", "", "key description")
	keysCreateCmd.Flags().String("secret-id", "", "HMAC secret to issue under (required when several are configured)")
}

// issuingSecret picks the HMAC secret new keys are issued under.
func issuingSecret(secretID string) (string, []byte, error) {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return "", nil, fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if secretID != "" {
		secret, ok := secrets[secretID]
		if !ok {
			return "", nil, fmt.Errorf("HMAC secret %s not configured", secretID)
		}
		return secretID, secret, nil
	}

	switch len(secrets) {
	case 0:
		return "", nil, fmt.Errorf("no HMAC secrets configured (set SB_HMAC_SECRET environment variable)")
	case 1:
		for id, secret := range secrets {
			return id, secret, nil
		}
	}
	ids := make([]string, 0, len(secrets))
	for id := range secrets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return "", nil, fmt.Errorf("%d HMAC secrets configured, choose one with --secret-id: %v", len(ids), ids)
}

func runKeysCreate(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	name, _ := cmd.Flags().GetString("name")
	secretFlag, _ := cmd.Flags().GetString("secret-id")

	secretID, secret, err := issuingSecret(secretFlag)
	if err != nil {
		return err
	}
	key, hash, err := auth.GenerateAPIKey(secretID, secret)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := store.CreateAPIKey(tenant, name, secretID, hash)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key id:  %s\n", rec.ID)
	fmt.Fprintf(out, "api key: %s\n", key)
	fmt.Fprintln(out, "The API key is shown once; store it now.")
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	keys, err := store.ListAPIKeys(tenant)
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), table.Row{"Key", "Name", "Created", "Last used", "Revoked"})
	for _, k := range keys {
		tw.AppendRow(table.Row{k.ID, k.Name, since(k.CreatedAt), since(k.LastUsedAt.Time), since(k.RevokedAt.Time)})
	}
	tw.Render()
	return nil
}

func runKeysRevoke(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.RevokeAPIKey(tenant, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", args[0])
	return nil
}
