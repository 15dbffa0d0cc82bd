package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	isatty "github.com/mattn/go-isatty"

	// Pull in all available loggers.
	_ "github.com/morfien101/splitstream/processlogger/allloggers"
	"github.com/morfien101/splitstream/signalreplicator"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/internallogger"
	"github.com/morfien101/splitstream/processlogger"
	"github.com/morfien101/splitstream/sourcemanager"
)

var (
	// version and timestamp are expected to be passed in at build time.
	buildVersion   = "0.1.0"
	buildTimestamp = ""
)

const queueSize = 64

func main() {
	flagHelp := flag.Bool("h", false, "Shows this help menu.")
	flagVersion := flag.Bool("v", false, "Shows the version.")
	flagVersionExtended := flag.Bool("version", false, "Shows extended version numbering.")
	flagConfigExample := flag.Bool("example-config", false, "Displays and example configration.")
	flagConfigFilePath := flag.String("f", "", "Location of the config file to read. Files ending in .toml are read as TOML.")
	flagSeparator := flag.String("separator", "", "Literal line separator. Overrides the configuration file.")
	flagEncoding := flag.String("encoding", "", "Character encoding of the sources, such as utf-8 or ISO-8859-1. Empty keeps raw bytes.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file ...]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(flag.CommandLine.Output(), "Logging engines: %s\n", strings.Join(processlogger.RegisteredLoggers(), ", "))
	}
	// Parse and process terminating flags
	flag.Parse()
	if *flagHelp {
		flag.Usage()
		return
	}
	if *flagVersion {
		fmt.Println(buildVersion)
		return
	}
	if *flagVersionExtended {
		fmt.Printf("Version: %s\nBuild time: %s\nGo version: %s\n", buildVersion, buildTimestamp, runtime.Version())
		return
	}
	if *flagConfigExample {
		out, err := configfile.ExampleConfigFile()
		if err != nil {
			fmt.Printf(`There was an error generating the configuration file example.
Please log an error with the maintainer.
The error was: %s`, err)
			os.Exit(1)
		}
		fmt.Println(out)
		return
	}

	// Create a limited logger that will be thrown away once we fired up our actual loggers.
	starterSMConfig := configfile.LoggingConfig{
		Engine:     []string{"console"},
		SourceName: "splitstream",
	}
	loggers := processlogger.New(queueSize, configfile.DefaultLoggerDetails{})
	if err := loggers.StartLoggers(configfile.Sources{}, starterSMConfig); err != nil {
		fmt.Println(err)
	}
	smlogger := internallogger.New(starterSMConfig, loggers)

	config, err := buildConfig(*flagConfigFilePath, flag.Args(), *flagSeparator, *flagEncoding)
	if err != nil {
		smlogger.Errorf("Failed to render the configuration. Error: %s", err)
		terminate(1, loggers)
	}

	// The starter loggers are drained before the full set takes over.
	loggers.Shutdown()
	loggers = processlogger.New(queueSize, config.DefaultLoggerConfig)
	if err := loggers.StartLoggers(config.Sources, config.SourceManager.LoggerConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Could not start full logging. Error: %s\n", err)
		// Attempt to close what has been opened.
		terminate(1, loggers)
	}

	smlogger = internallogger.New(config.SourceManager.LoggerConfig, loggers)
	smlogger.DebugOn(config.SourceManager.DebugLogging)
	smlogger.Debugln("Debugging logging for splitstream has been turned on")
	if config.SourceManager.DebugOptions.PrintGeneratedConfig {
		smlogger.Debugf("Using generated config:\n%s", *config)
	}

	// Setup signal capture. Every signal is passed on to command sources.
	// SIGINT and SIGTERM also stop the file and stdin sources.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for receivedSignal := range signals {
			smlogger.Debugf("Received %s", receivedSignal)
			signalreplicator.Send(receivedSignal)
			if receivedSignal != syscall.SIGHUP {
				cancel()
			}
		}
	}()

	sm := sourcemanager.New(config.Splitter, config.Sources, loggers, smlogger)
	endReport, err := sm.Run(ctx)
	if config.SourceManager.DebugOptions.PrintEndReport {
		smlogger.Println(endReport)
	}
	if err != nil {
		smlogger.Errorf("Splitting finished with errors. Error: %s", err)
		terminate(1, loggers)
	}

	// Shutdown the loggers.
	terminate(0, loggers)
}

// buildConfig reads the configuration file when there is one, adds the
// files named on the command line and falls back to stdin when nothing
// else is configured. Flags override the splitter settings.
func buildConfig(path string, files []string, separator, encoding string) (*configfile.Config, error) {
	config := configfile.Default()
	if path != "" {
		var err error
		config, err = configfile.New(path)
		if err != nil {
			return nil, err
		}
	}

	for _, file := range files {
		config.AddSource(&configfile.Source{
			Type: configfile.SourceFile,
			Path: file,
		})
	}

	if len(config.Sources) == 0 {
		fd := os.Stdin.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			return nil, fmt.Errorf("no sources configured and stdin is a terminal. Pass files, a configuration file or pipe something in")
		}
		config.AddSource(&configfile.Source{Type: configfile.SourceStdin})
	}

	if separator != "" {
		config.Splitter.Separator = separator
	}
	if encoding != "" {
		config.Splitter.Encoding = encoding
	}

	if err := config.Finalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// terminate will flush the loggers and then exit with the passed in code.
// If the loggers fail then we have no choice but to spit to the console.
func terminate(exitcode int, loggers *processlogger.LogManager) {
	// Shutdown the loggers.
	if errs := loggers.Shutdown(); len(errs) > 0 {
		es := []string{}
		for _, err := range errs {
			es = append(es, err.Error())
		}
		log.Fatalf("Error shutting down loggers. Errors: %s", strings.Join(es, ","))
	}

	os.Exit(exitcode)
}
