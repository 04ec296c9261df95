package main

import (
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-analysis/pkg/blame"
)

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Level:      hclog.Trace,
		Output:     os.Stderr,
		JSONFormat: true,
	})

	blame.ServeGitBlamer(logger)
}
