package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andrewbenington/group-mix/app"
	"github.com/andrewbenington/group-mix/config"
	"github.com/andrewbenington/group-mix/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %s\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "group-mix",
		Usage: "Merge a group's Spotify top tracks into one playlist",
		Commands: []*cli.Command{
			serveCommand(),
			pruneCommand(),
			versionCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Fatal("application error", zap.Error(err))
	}
}

func newLogger() (*zap.Logger, error) {
	if config.GetIsProd() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Address to listen on",
				Value: "0.0.0.0:8080",
			},
			&cli.BoolFlag{
				Name:  "no-engine",
				Usage: "Do not prune expired rooms in the background",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	v := version.Get(string(config.GetStoreDialect()))
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal version data: %w", err)
	}
	zap.L().Info("version:\n" + string(bytes))

	a := app.App{}
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer a.Close()

	if !cmd.Bool("no-engine") {
		go a.Engine.Run(ctx)
	}

	return a.Run(ctx, cmd.String("addr"))
}

func pruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Delete rooms older than ROOM_TTL once and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			a := app.App{}
			if err := a.Initialize(ctx); err != nil {
				return err
			}
			defer a.Close()

			pruned, err := a.Engine.PruneOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "pruned %d rooms\n", pruned)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build metadata",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			bytes, err := yaml.Marshal(version.Get(string(config.GetStoreDialect())))
			if err != nil {
				return fmt.Errorf("marshal version data: %w", err)
			}
			_, err = cmd.Root().Writer.Write(bytes)
			return err
		},
	}
}
