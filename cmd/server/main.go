package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mchic/setlist/internal/logging"
)

func main() {
	app := &cli.Command{
		Name:   "setlist",
		Usage:  "Setlist API for the duo's repertoire",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			{
				Name:   "reset",
				Usage:  "Restore the seed setlist (file store only)",
				Action: reset,
			},
			{
				Name:   "list",
				Usage:  "Print the setlist",
				Action: list,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logging.New(nil, "info").Fatal("application error", "err", err)
	}
}
