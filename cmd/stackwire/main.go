package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/danpasecinic/stackwire"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := newRootCommand().ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case stackwire.IsTokenConflict(err):
		message = fmt.Sprintf("%s\nHint: two resources declare the same 'provides' token.", err)
	case stackwire.IsNamingConflict(err):
		message = fmt.Sprintf("%s\nHint: custom stack names must differ from resource groups and from 'root'.", err)
	case stackwire.IsInvalidConfig(err):
		message = fmt.Sprintf("%s\nHint: set --namespace and --name, or STACKWIRE_NAMESPACE and STACKWIRE_NAME.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
