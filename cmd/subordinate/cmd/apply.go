package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solatis/subordinate/internal/definition"
	"github.com/solatis/subordinate/internal/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply [file]",
	Short: "Apply a rule set to component states from a file",
	Long: `Apply compiles one rule set of a rule file against the components listed
in the state file, applies every rule once and prints the resulting states.

The state file is a YAML list of components:

  - {id: country, label: Country, value: AU}
  - {id: state, hidden: true}
  - {id: postcode, bind: address.postcode}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().String("state", "", "component state file (YAML)")
	applyCmd.Flags().String("rule-set", "", "rule set ID or name (required when the file holds several)")
	applyCmd.Flags().String("bean", "", "JSON bean file bound components read their values from")
	applyCmd.Flags().StringP("output", "o", "table", "output format (table, yaml)")
	applyCmd.MarkFlagRequired("state")
}

func runApply(cmd *cobra.Command, args []string) error {
	path, err := ruleFile(cmd, args)
	if err != nil {
		return err
	}
	statePath, _ := cmd.Flags().GetString("state")
	ruleSet, _ := cmd.Flags().GetString("rule-set")
	beanPath, _ := cmd.Flags().GetString("bean")
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "yaml" {
		return fmt.Errorf("invalid output format %q (want table or yaml)", output)
	}

	sets, err := definition.Load(path)
	if err != nil {
		return err
	}
	set, err := definition.Find(sets, ruleSet)
	if err != nil {
		return err
	}

	states, err := loadStates(statePath)
	if err != nil {
		return err
	}

	var bean json.RawMessage
	if beanPath != "" {
		if bean, err = os.ReadFile(beanPath); err != nil {
			return fmt.Errorf("failed to read bean: %w", err)
		}
	}

	res, err := definition.Apply(set, states, bean)
	if err != nil {
		return err
	}

	if output == "yaml" {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(res)
	}
	printResult(cmd, res)
	return nil
}

func loadStates(path string) ([]types.ComponentState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var states []types.ComponentState
	if err := yaml.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return states, nil
}

func printResult(cmd *cobra.Command, res *definition.Result) {
	out := cmd.OutOrStdout()

	rules := newTable(out, table.Row{"Rule", "Condition", "Result", "Actions"})
	for _, o := range res.Outcomes {
		rules.AppendRow(table.Row{o.Rule, o.Condition, o.Result, o.ActionsApplied})
	}
	rules.AppendFooter(table.Row{"", "", "", count(res.ActionsApplied)})
	rules.Render()

	comps := newTable(out, table.Row{"Component", "Value", "Disabled", "Hidden", "Mandatory"})
	for _, c := range res.Components {
		comps.AppendRow(table.Row{c.ID, value(c.Value), flag(c.Disabled), flag(c.Hidden), flag(c.Mandatory)})
	}
	comps.Render()
}
