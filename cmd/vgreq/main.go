package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/coral-mesh/vgreq/internal/cli"
	vgerrors "github.com/coral-mesh/vgreq/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *vgerrors.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
