package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/internal/packager"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Verify bool // check the package against the active target
}

// InspectOutput is the JSON output for the inspect command.
type InspectOutput struct {
	packager.Manifest `yaml:",inline"`
	Verified bool `json:"verified" yaml:"verified"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file.adpf>",
		Short: "Show the members and board identity of a package",
		Long: `List the members of a release package and the board identity it carries.

With --verify the members must equal the active target's artifacts plus
boardtype.txt, and the board identity must match the target's board. This is
the check a flashing tool runs before writing the firmware.`,
		Example: `  adpbuild inspect .pio/build/fsrio_v2.adpf
  adpbuild inspect -e fsrio_v3 --verify .pio/build/fsrio_v3.adpf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Check the package against the active target")

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	cc, err := NewCommandContextWithoutEngine(cmd)
	if err != nil {
		return err
	}

	var m *packager.Manifest
	if opts.Verify {
		t, err := cc.Cfg.ResolveTarget(cc.Cfg.Environment)
		if err != nil {
			return err
		}
		m, err = packager.Verify(path, t.Profile.Artifacts, t.Board)
		if err != nil {
			return err
		}
	} else {
		m, err = packager.Inspect(path)
		if err != nil {
			return err
		}
	}
	cc.Logger.Debug("package inspected", "path", path, "members", len(m.Members), "board", m.Board)

	r := cc.Renderer
	out := InspectOutput{Manifest: *m, Verified: opts.Verify}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, m.Path))
		r.Println("")
		r.Println(output.FormatKeyValue("Board", m.Board.String()))
		for _, name := range m.Members {
			r.Printf("- %s\n", name)
		}
	} else {
		styles := r.Styles()
		r.Header(1, m.Path)
		r.Println(styles.KeyValue("board", m.Board.String()))
		for _, name := range m.Members {
			r.Printf("  %s\n", styles.Path.Render(name))
		}
	}

	if opts.Verify {
		r.Success(fmt.Sprintf("package matches %s (%s)", cc.Cfg.Environment, m.Board))
	}
	return nil
}
