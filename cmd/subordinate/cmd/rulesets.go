package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/solatis/subordinate/internal/core/db"
	"github.com/solatis/subordinate/internal/definition"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store the rule sets of a rule file for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tenant's stored rule sets",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(importCmd, listCmd)
	for _, c := range []*cobra.Command{importCmd, listCmd} {
		c.Flags().String("tenant", "", "tenant ID")
		c.MarkFlagRequired("tenant")
	}
}

func openStore(cmd *cobra.Command) (*db.Store, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	database, queries, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := requireMigrated(database); err != nil {
		database.Close()
		return nil, nil, err
	}
	return db.NewStore(queries), func() { database.Close() }, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	sets, err := definition.Load(args[0])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := store.SaveRuleSets(tenant, sets)
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), table.Row{"Rule set", "Name", "Rules"})
	for _, rec := range recs {
		tw.AppendRow(table.Row{rec.ID, rec.Name, count(rec.RuleCount)})
	}
	tw.Render()
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	store, closeStore, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := store.ListRuleSets(tenant)
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), table.Row{"Rule set", "Name", "Rules", "Evaluations", "Updated"})
	for _, r := range recs {
		n, err := store.CountEvaluations(tenant, r.ID)
		if err != nil {
			return err
		}
		tw.AppendRow(table.Row{r.ID, r.Name, count(r.RuleCount), count(n), since(r.UpdatedAt)})
	}
	tw.Render()
	return nil
}
