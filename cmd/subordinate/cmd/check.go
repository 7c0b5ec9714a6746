package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/solatis/subordinate/internal/definition"
	"github.com/solatis/subordinate/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Check that every rule set of a rule file compiles",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// ruleFile returns the file argument, falling back to the configured
// rule file.
func ruleFile(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Rules.File == "" {
		return "", fmt.Errorf("rule file required (argument, --rules or SB_RULES_FILE)")
	}
	return cfg.Rules.File, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := ruleFile(cmd, args)
	if err != nil {
		return err
	}
	sets, err := definition.Load(path)
	if err != nil {
		return err
	}

	tw := newTable(cmd.OutOrStdout(), table.Row{"Rule set", "Name", "Rules", "Components", "Status"})
	failed := 0
	for _, set := range sets {
		status := "ok"
		if err := definition.Check(set); err != nil {
			status = err.Error()
			failed++
		}
		tw.AppendRow(table.Row{displayID(set.ID), set.Name, count(len(set.Rules)), count(len(definition.References(set))), status})
	}
	tw.Render()

	if failed > 0 {
		return fmt.Errorf("%d of %d rule sets failed", failed, len(sets))
	}
	return nil
}

func displayID(id types.RuleSetID) string {
	if id == "" {
		return "-"
	}
	return string(id)
}
