package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kolibri91/charls/cmd/jlsctl/cmd"
)

// gitsha is set at build time via -ldflags.
var gitsha = "dev"

func main() {
	ctx := context.Background()
	if err := cmd.NewRoot(ctx, gitsha).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
