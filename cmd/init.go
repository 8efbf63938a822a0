package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/doxnav/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize doxnav configuration with an interactive wizard",
	Long:  `Runs an interactive wizard that locates your Doxygen HTML output and generates a .doxnav.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
