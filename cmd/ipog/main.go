package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/combinatorics/pkg/lib/signals"
)

func main() {
	logger := logrus.New()
	cmd := newRootCmd(logger)
	if err := cmd.ExecuteContext(signals.Context(logger)); err != nil {
		os.Exit(1)
	}
}
