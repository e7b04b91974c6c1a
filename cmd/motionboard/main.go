package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/motionboard/internal/app"
	"github.com/dmitrijs2005/motionboard/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	a, err := app.NewApp(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	runErr := a.Run(ctx, os.Stdin)
	if err := a.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
	if runErr != nil {
		log.Fatalf("%v", runErr)
	}
}
