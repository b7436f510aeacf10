package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/de/internal/deerrors"
)

// shimCmd is out of scope per spec §1 (the shim-script generator and
// PATH-modifying installer are external collaborators); this only keeps
// the CLI surface named in §6 from dispatching into the fallthrough
// resolver by mistake.
var shimCmd = &cobra.Command{
	Use:    "shim",
	Short:  "Shell shim generation (not supported in this build)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return &deerrors.UnsupportedError{Feature: "shim"}
	},
}

var selfCmd = &cobra.Command{
	Use:   "self",
	Short: "Self-management commands",
}

var selfUpdateCmd = &cobra.Command{
	Use:    "update",
	Short:  "Self-update (not supported in this build)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return &deerrors.UnsupportedError{Feature: "self update"}
	},
}

func init() {
	selfCmd.AddCommand(selfUpdateCmd)
	rootCmd.AddCommand(shimCmd, selfCmd)
}
