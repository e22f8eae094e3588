package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/pcfseg/internal/app"
	"github.com/chrissnell/pcfseg/internal/constants"
	"github.com/chrissnell/pcfseg/internal/log"
	"github.com/chrissnell/pcfseg/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file (defaults are used when empty)")
	input := flag.String("input", "", "Depth-ratio TSV to segment (chromosome, position, ratio)")
	output := flag.String("output", "-", "Where to write the per-arm segment TSV; '-' for stdout")
	serve := flag.Bool("serve", false, "Run the REST server instead of a batch segmentation")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	logFile := flag.String("log-file", "", "Write JSON logs to this rotated file instead of the console")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pcfseg %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.InitWithFile(*debug, *logFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	application := app.New(cfgData, log.GetSugaredLogger())

	if *serve {
		if err := application.Serve(context.Background()); err != nil {
			log.Errorf("Application error: %v", err)
			os.Exit(1)
		}
		return
	}

	if *input == "" {
		fmt.Fprintln(os.Stderr, "either -input or -serve is required; run with -h for help")
		os.Exit(2)
	}

	if _, err := application.RunBatch(context.Background(), *input, *output); err != nil {
		log.Errorf("Segmentation error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}

	filename, _ := filepath.Abs(cfgFile)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}

	return cfgData, nil
}
