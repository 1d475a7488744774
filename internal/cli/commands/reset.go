package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/adpbuild/internal/cli/output"
	"github.com/leapstack-labs/adpbuild/internal/device"
)

// NewResetCommand creates the reset command.
func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the attached pad into its bootloader (pre-upload hook)",
		Long: `Run the pre-upload hook for the active environment.

Makes sure the HID backend is available, opens the pad by its USB vendor and
product ID, prints its identity strings and sends the reset report once.
There is no retry: a missing pad fails the upload.`,
		Example: `  adpbuild reset -e fsrio_v2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd)
		},
	}
}

func runReset(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := cc.Engine.PreUpload(cmd.Context(), cc.Cfg.Environment)
	if err != nil {
		return err
	}
	if id == nil {
		id = &device.Identity{}
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(id)
	case output.ModeYAML:
		return r.YAML(id)
	case output.ModeMarkdown:
		r.Println(output.FormatKeyValue("Manufacturer", id.Manufacturer))
		r.Println(output.FormatKeyValue("Product", id.Product))
		r.Println(output.FormatKeyValue("Serial Number", id.Serial))
		return nil
	}

	styles := r.Styles()
	r.Println(styles.KeyValue("Manufacturer", id.Manufacturer))
	r.Println(styles.KeyValue("Product", id.Product))
	r.Println(styles.KeyValue("Serial Number", id.Serial))
	r.Success("device reset")
	return nil
}
