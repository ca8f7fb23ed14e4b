package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// secretConfigKeys are masked by `config show`
var secretConfigKeys = map[string]bool{
	"credentials_passphrase": true,
}

func newConfigCmd(c *cli) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the CLI configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, flags applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configs := c.config.GetAllConfigs()
			for key, value := range configs {
				if secretConfigKeys[key] && value != "" {
					configs[key] = "********"
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", c.config.Path())
			return c.printResult(cmd, configs)
		},
	})

	return configCmd
}
