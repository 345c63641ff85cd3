package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"todoList/internal/app"
	"todoList/internal/config"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "todo-list:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := config.NewFlagSet("todo-list")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	if printConfig, _ := fs.GetBool("print-config"); printConfig {
		out, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	ctx := context.Background()
	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		application.Close()
		return err
	}
	return application.Run(ctx)
}
