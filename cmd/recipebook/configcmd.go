package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the configuration after flags, file and environment are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			showSecrets, _ := cmd.Flags().GetBool("show-secrets")
			out, err := cfg.MarshalYAML(showSecrets)
			if err != nil {
				return err
			}

			if used := viper.ConfigFileUsed(); used != "" {
				if _, err := cmd.OutOrStdout().Write([]byte("# " + used + "\n")); err != nil {
					return err
				}
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	show.Flags().Bool("show-secrets", false, "print the API token instead of masking it")

	cmd.AddCommand(show)
	return cmd
}
