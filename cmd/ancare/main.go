package main

import (
	"os"

	"github.com/ancare/ancare/internal/cli"
	"github.com/ancare/ancare/internal/common/logtrace"
)

func init() {
	logtrace.InitLoggerWithWriter(os.Stderr, true)
}

func main() {
	cli.Execute()
}
