package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// HistoryOutput is the JSON output for the history command.
type HistoryOutput struct {
	Runs     []RunInfo     `json:"runs" yaml:"runs"`
	Packages []PackageInfo `json:"packages" yaml:"packages"`
	Resets   []ResetInfo   `json:"resets" yaml:"resets"`
}

// RunInfo is one ledger run.
type RunInfo struct {
	ID          string     `json:"id" yaml:"id"`
	Phase       string     `json:"phase" yaml:"phase"`
	Environment string     `json:"environment" yaml:"environment"`
	Status      string     `json:"status" yaml:"status"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// PackageInfo is one recorded package.
type PackageInfo struct {
	Environment string    `json:"environment" yaml:"environment"`
	Path        string    `json:"path" yaml:"path"`
	Board       string    `json:"board" yaml:"board"`
	SHA256      string    `json:"sha256" yaml:"sha256"`
	Size        int64     `json:"size" yaml:"size"`
	Members     []string  `json:"members" yaml:"members"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// ResetInfo is one recorded device reset.
type ResetInfo struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Manufacturer string    `json:"manufacturer" yaml:"manufacturer"`
	Product      string    `json:"product" yaml:"product"`
	Serial       string    `json:"serial" yaml:"serial"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent hook runs, packages and device resets",
		Long: `Show the ledger: every hook run with its status, the packages created by
post-link runs and the pads reset by pre-upload runs. Newest first.`,
		Example: `  adpbuild history
  adpbuild history --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum entries per section (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	store := cc.Engine.Store()
	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	pkgs, err := store.ListPackages("", opts.Limit)
	if err != nil {
		return err
	}
	resets, err := store.ListResets(opts.Limit)
	if err != nil {
		return err
	}

	out := buildHistory(runs, pkgs, resets)

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	}

	r.Header(1, fmt.Sprintf("Runs (%d)", len(out.Runs)))
	if len(out.Runs) > 0 {
		rows := make([]table.Row, 0, len(out.Runs))
		for _, run := range out.Runs {
			rows = append(rows, table.Row{shortID(run.ID), run.Phase, run.Environment, run.Status,
				run.StartedAt.Local().Format(time.DateTime), run.Error})
		}
		r.Table(table.Row{"Run", "Phase", "Env", "Status", "Started", "Error"}, rows)
		r.Println("")
	}

	r.Header(1, fmt.Sprintf("Packages (%d)", len(out.Packages)))
	if len(out.Packages) > 0 {
		rows := make([]table.Row, 0, len(out.Packages))
		for _, p := range out.Packages {
			rows = append(rows, table.Row{p.Environment, p.Path, p.Board, shortDigest(p.SHA256), p.Size,
				strings.Join(p.Members, ", ")})
		}
		r.Table(table.Row{"Env", "Path", "Board", "SHA-256", "Size", "Members"}, rows)
		r.Println("")
	}

	r.Header(1, fmt.Sprintf("Device Resets (%d)", len(out.Resets)))
	if len(out.Resets) > 0 {
		rows := make([]table.Row, 0, len(out.Resets))
		for _, rs := range out.Resets {
			rows = append(rows, table.Row{shortID(rs.RunID), rs.Manufacturer, rs.Product, rs.Serial,
				rs.CreatedAt.Local().Format(time.DateTime)})
		}
		r.Table(table.Row{"Run", "Manufacturer", "Product", "Serial", "At"}, rows)
	}
	return nil
}

func buildHistory(runs []*core.Run, pkgs []*core.PackageRecord, resets []*core.ResetRecord) HistoryOutput {
	out := HistoryOutput{
		Runs:     make([]RunInfo, 0, len(runs)),
		Packages: make([]PackageInfo, 0, len(pkgs)),
		Resets:   make([]ResetInfo, 0, len(resets)),
	}
	for _, run := range runs {
		out.Runs = append(out.Runs, RunInfo{
			ID:          run.ID,
			Phase:       string(run.Phase),
			Environment: run.Environment,
			Status:      string(run.Status),
			StartedAt:   run.StartedAt,
			CompletedAt: run.CompletedAt,
			Error:       run.Error,
		})
	}
	for _, p := range pkgs {
		out.Packages = append(out.Packages, PackageInfo{
			Environment: p.Environment,
			Path:        p.Path,
			Board:       p.BoardIdentity.String(),
			SHA256:      p.SHA256,
			Size:        p.Size,
			Members:     p.Members,
			CreatedAt:   p.CreatedAt,
		})
	}
	for _, rs := range resets {
		out.Resets = append(out.Resets, ResetInfo{
			RunID:        rs.RunID,
			Manufacturer: rs.Manufacturer,
			Product:      rs.Product,
			Serial:       rs.Serial,
			CreatedAt:    rs.CreatedAt,
		})
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func shortDigest(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
