package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/rentals/internal/config"
	"github.com/mrlokans/rentals/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]

	switch command {
	case "reindex":
		cfg := config.NewConfig()
		if err := entrypoint.Reindex(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version", "-v", "--version":
		fmt.Printf("rentals %s (commit: %s)\n", Version, Commit)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: rentals [command]

Commands:
  serve      Start the HTTP server (default)
  reindex    Rebuild the search index from the database and exit
  version    Show version information
  help       Show this help message

Configuration is read from environment variables, for example:
  DATABASE_DRIVER=sqlite DATABASE_PATH=./rentals.db
  SEARCH_INDEX_PATH=./rentals-index.db
  SEARCH_CACHE_ENABLED=true SEARCH_CACHE_ADDR=127.0.0.1:6379`)
}
