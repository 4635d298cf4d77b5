package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"voiceassist/internal/app"
)

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(c.stdout, "voiceassist %s (%s/%s, %s)\n", app.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
			return nil
		},
	}
}
