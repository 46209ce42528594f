// Command bardd runs the bard daemon in the foreground. The bard CLI's
// `daemon` subcommand embeds the same runtime; this binary exists for
// service managers that want a dedicated daemon executable.
package main

import (
	"context"
	"flag"
	"log"

	"bard/internal/config"
	"bard/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("bardd: %v", err)
	}
}
