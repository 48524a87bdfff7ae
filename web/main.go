package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/df07/go-scene-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	scenesDir := flag.String("scenes-dir", "scenes", "Directory of JSON scene files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	webServer := server.NewServer(*port, *scenesDir, logger)

	if err := webServer.Start(); err != nil {
		logger.Error("Error starting server", "error", err)
		os.Exit(1)
	}
}
