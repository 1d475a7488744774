package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/internal/engine"
	"github.com/leapstack-labs/adpbuild/internal/filter"
	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// FilterOptions holds options for the filter command.
type FilterOptions struct {
	Flags []string // ambient compile flags
	Stdin bool     // read node paths from stdin
}

// NewFilterCommand creates the filter command.
func NewFilterCommand() *cobra.Command {
	opts := &FilterOptions{}

	cmd := &cobra.Command{
		Use:   "filter [paths...]",
		Short: "Decide which source files to compile (compile hook)",
		Long: `Run the compile-phase hook for the active environment.

Each candidate source is kept as discovered, excluded from the build, or
compiled with the ambient flags plus the architecture defines. The command
fails when a selective target saw vendored sources but compiled none.`,
		Example: `  # Decide two sources for the AVR build
  adpbuild filter -e fsrio_v2 src/main.cpp lib/lufa/LUFA/Drivers/USB/Core/Events.c

  # Stream paths from the build tool and print JSON lines
  find lib src -name '*.c' | adpbuild filter --stdin -o json --flags=-Os`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Flags, "flags", nil, "Ambient compile flag (repeatable)")
	cmd.Flags().BoolVar(&opts.Stdin, "stdin", false, "Read source paths from stdin, one per line")

	return cmd
}

func runFilter(cmd *cobra.Command, args []string, opts *FilterOptions) error {
	paths := args
	if opts.Stdin {
		read, err := readPaths(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read paths from stdin: %w", err)
		}
		paths = append(paths, read...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source paths given")
	}

	nodes := make([]core.CandidateNode, 0, len(paths))
	for _, p := range paths {
		nodes = append(nodes, core.NewCandidateNode(p))
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := cc.Engine.Filter(cmd.Context(), cc.Cfg.Environment, nodes, opts.Flags)
	if res != nil {
		if rerr := renderFilter(cc.Renderer, res); rerr != nil {
			return rerr
		}
	}
	return err
}

func readPaths(r io.Reader) ([]string, error) {
	var paths []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	return paths, sc.Err()
}

func renderFilter(r *output.Renderer, res *engine.FilterResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		enc := json.NewEncoder(r.Writer())
		for _, d := range res.Decisions {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	case output.ModeYAML:
		return r.YAML(res)
	}

	styles := r.Styles()
	for _, d := range res.Decisions {
		line := fmt.Sprintf("%-8s %s", d.Action, d.Path)
		if d.Action == filter.ActionCompile {
			line += " " + styles.Muted.Render(strings.Join(d.Flags, " "))
		}
		r.Println(line)
	}

	s := res.Summary
	r.Println(r.Muted(fmt.Sprintf("%d sources: %d compiled, %d excluded, %d kept (%d vendored)",
		s.Total, s.Compiled, s.Excluded, s.Kept, s.Vendored)))
	return nil
}
