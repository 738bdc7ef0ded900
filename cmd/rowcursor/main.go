// Command rowcursor runs parameterised SQL from the command line.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/koustreak/rowcursor/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
