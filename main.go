package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"diskwarden/api"
	"diskwarden/internal/platform"
)

func main() {
	// Parse command line flags
	port := flag.String("port", "8000", "Port to run the server on")
	bind := flag.String("bind", "0.0.0.0", "IP address to bind the server to")
	flag.Parse()

	// Validate platform support
	if err := platform.ValidateSupport(); err != nil {
		log.Fatalf("Platform validation failed: %v", err)
	}
	if !platform.CanScan() {
		log.Printf("Surface scans unavailable on %s; serving enumeration only", platform.GetOS())
	}

	// Create the API server
	server, err := api.NewServer()
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		os.Exit(0)
	}()

	// Start the server
	log.Printf("Starting diskwarden server on %s:%s", *bind, *port)
	log.Fatal(server.Start(*bind + ":" + *port))
}
