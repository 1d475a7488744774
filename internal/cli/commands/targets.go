package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// TargetOutput is the JSON output for one configured target.
type TargetOutput struct {
	Name       string   `json:"name" yaml:"name"`
	Arch       string   `json:"arch" yaml:"arch"`
	Board      string   `json:"board" yaml:"board"`
	Policy     string   `json:"policy" yaml:"policy"`
	LinkOutput string   `json:"link_output" yaml:"link_output"`
	Artifacts  []string `json:"artifacts" yaml:"artifacts"`
	When       string   `json:"when,omitempty" yaml:"when,omitempty"`
	Active     bool     `json:"active" yaml:"active"`
}

// NewTargetsCommand creates the targets command.
func NewTargetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the configured build environments",
		Long: `List every configured target with its architecture, board identity,
filter policy and release artifacts. The active environment is marked.`,
		Example: `  adpbuild targets
  adpbuild targets -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTargets(cmd)
		},
	}
}

func runTargets(cmd *cobra.Command) error {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}

	targets, err := cc.Cfg.ResolveTargets()
	if err != nil {
		return err
	}

	outs := make([]TargetOutput, 0, len(targets))
	for _, t := range targets {
		outs = append(outs, targetOutput(t, t.Name == cc.Cfg.Environment))
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(outs)
	case output.ModeYAML:
		return r.YAML(outs)
	}

	rows := make([]table.Row, 0, len(outs))
	for _, o := range outs {
		name := o.Name
		if o.Active {
			name += " *"
		}
		rows = append(rows, table.Row{name, o.Arch, o.Board, o.Policy, o.LinkOutput, strings.Join(o.Artifacts, ", ")})
	}
	r.Table(table.Row{"Env", "Arch", "Board", "Policy", "Link Output", "Artifacts"}, rows)
	return nil
}

func targetOutput(t core.Target, active bool) TargetOutput {
	return TargetOutput{
		Name:       t.Name,
		Arch:       string(t.Arch),
		Board:      t.Board.String(),
		Policy:     string(t.Policy),
		LinkOutput: t.Profile.LinkOutput,
		Artifacts:  t.Profile.Artifacts.Files(),
		When:       t.When,
		Active:     active,
	}
}
