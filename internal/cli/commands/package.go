package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/internal/packager"
)

// PackageOptions holds options for the package command.
type PackageOptions struct {
	Built string // link output that just finished
}

// PackageOutput is the JSON output for the package command.
type PackageOutput struct {
	Env     string   `json:"env" yaml:"env"`
	Built   string   `json:"built" yaml:"built"`
	Path    string   `json:"path,omitempty" yaml:"path,omitempty"`
	SHA256  string   `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Size    int64    `json:"size,omitempty" yaml:"size,omitempty"`
	Members []string `json:"members,omitempty" yaml:"members,omitempty"`
}

// NewPackageCommand creates the package command.
func NewPackageCommand() *cobra.Command {
	opts := &PackageOptions{}

	cmd := &cobra.Command{
		Use:   "package",
		Short: "Bundle release artifacts into an .adpf package (post-link hook)",
		Long: `Run the post-link hook for the active environment.

When the finished link output matches the target's link output, the
architecture's artifacts and the board identity are written into a single
package in the build directory. Other link outputs are ignored.`,
		Example: `  # Package the AVR build after firmware.hex is linked
  adpbuild package -e fsrio_v2 --built .pio/build/fsrio_v2/firmware.hex`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPackage(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Built, "built", "", "Path of the link output that just finished")
	_ = cmd.MarkFlagRequired("built")

	return cmd
}

func runPackage(cmd *cobra.Command, opts *PackageOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	env := cc.Cfg.Environment
	res, err := cc.Engine.PostLink(cmd.Context(), env, cc.Cfg.BuildDir, opts.Built)
	if err != nil {
		return err
	}
	return renderPackage(cc.Renderer, env, opts.Built, res)
}

func renderPackage(r *output.Renderer, env, built string, res *packager.Result) error {
	out := PackageOutput{Env: env, Built: built}
	if res != nil {
		out.Path, out.SHA256, out.Size, out.Members = res.Path, res.SHA256, res.Size, res.Members
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeYAML:
		return r.YAML(out)
	}

	if res == nil {
		r.Println(r.Muted(fmt.Sprintf("%s: no package hook for %s", env, built)))
		return nil
	}

	r.Success("packaged " + res.Path)
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("SHA-256", res.SHA256))
		r.Println(output.FormatKeyValue("Size", fmt.Sprintf("%d", res.Size)))
		r.Println(output.FormatKeyValue("Members", strings.Join(res.Members, ", ")))
		return nil
	}
	styles := r.Styles()
	r.Println("  " + styles.KeyValue("sha256", res.SHA256))
	r.Println("  " + styles.KeyValue("size", fmt.Sprintf("%d bytes", res.Size)))
	r.Println("  " + styles.KeyValue("members", strings.Join(res.Members, ", ")))
	return nil
}
