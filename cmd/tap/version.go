package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	var versionJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !versionJSON {
				_, err := fmt.Fprintf(a.stdout, "tap %s\n", Version)
				return err
			}

			info := struct {
				Version string `json:"version"`
			}{
				Version: Version,
			}
			out, err := json.Marshal(info)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, string(out))
			return err
		},
	}
	cmd.Flags().BoolVarP(&versionJSON, "json", "j", false, "Output in JSON format")
	return cmd
}
