package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/gradekeeper/internal/admin"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
)

// usage: cli [command [args]] [flags]; without a command an interactive
// prompt is started.
func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := admin.NewApp(ctx, cfg, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	var args []string
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		args = positional(os.Args[1:])
	}

	if err := app.Run(ctx, args); err != nil {
		log.Printf("%v", err)
		app.Close()
		os.Exit(1)
	}
}

// positional returns the leading arguments up to the first flag.
func positional(args []string) []string {
	for i, a := range args {
		if strings.HasPrefix(a, "-") {
			return args[:i]
		}
	}
	return args
}
