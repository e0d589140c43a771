package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCmd reports the build version.
func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jlsctl %s (%s %s/%s)\n", gitsha, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
