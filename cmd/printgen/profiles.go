// cmd/printgen/profiles.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"printgen/pkg/profile"
)

func newProfilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List the profiles in the embedded capability database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range profile.Names() {
				p, err := profile.Load(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s %s (%d code pages)\n",
					name, p.Vendor, p.Name, len(p.CodePages))
			}
			return nil
		},
	}
	return cmd
}
