// Copyright 2025 The ContextServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the context-aware completion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

ContextServe provides fast prefix-based completion using Patricia tries with
weight ranking, filtered and boosted by context tags compiled into byte
automata. It can operate as a MessagePack IPC server for integration with
text editors, or as a CLI application for testing and debugging.

Every indexed entry carries a weight and any number of context tags (sports,
news, a user id, a geo bucket). A request names the contexts it cares about
and the query runs only over those, optionally boosting some tags above
others. Requests without context directives search every tag.

# Usage

Start the server with default settings:

	cserve

Use a custom dictionary file and enable debug mode:

	cserve -data /path/to/dictionary.bin -d

Run in CLI mode for interactive testing:

	cserve -c -limit 10 -prmin 2

The dictionary is a single MessagePack file of weighted, context-tagged
entries (a plain TSV text file also works: weight, text, then comma-joined
tags). Generate one with dictionary.SaveFile or point -data at a text file.

# Configuration

Runtime configuration is managed through a TOML file that supports query
compilation limits, server parameters, and the dictionary location:

	[suggest]
	work_limit = 10000
	default_limit = 10
	fuzzy_max_edits = 1
	fuzzy_min_length = 3

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true

	[dict]
	path = "data/dictionary.bin"

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Completion
requests are processed synchronously with microsecond timing information
included in responses.

Send a completion request restricted to one context, boosted over another:

	{"id": "req1", "p": "nba", "l": 20, "cx": [{"t": "sports", "b": 2}, {"t": "news"}]}

Receive suggestions with rank and score:

	{"id": "req1", "s": [{"w": "nba finals", "ctx": "sports", "r": 1, "sc": 200}], "c": 1, "t": 145}

Management requests cover health checks and dictionary reloads:

	{"id": "d1", "a": "info"}
	{"id": "d2", "a": "reload"}

# Server Mode

The default mode starts a MessagePack IPC server that processes completion
requests from stdin and writes responses to stdout. This design enables
integration with text editors and other applications through process
communication.

	srv := server.NewServer(index, config, dictPath)
	err := srv.Start()

The server handles request parsing, validation, and response formatting.
Diagnostics go to stderr so the protocol stream stays clean.

# CLI Mode

CLI mode provides an interactive interface for testing and debugging
completion functionality. It reads prefixes from stdin and displays scored
suggestions with their context tags. Context directives ride along on the
input line:

	ctx:sports nba
	ctx:sp*^2 all: nba
	nba~

This mode is primarily intended for development and testing new features
before deploying to server mode. It supports the same filtering and
bounds logic as the server but with human-readable output.

	inputHandler := cli.NewInputHandler(searcher, config, limit, noFilter)
	err := inputHandler.Start()

# Completion Engine

The core functionality is provided by the suggest package, which compiles
context filters and the typed prefix into one automaton and intersects it
with a Patricia trie of encoded keys.

	index := suggest.NewIndex()
	index.Add("nba finals", 100, "sports")
	searcher := suggest.NewSearcher(index, workLimit)
	results, err := searcher.Suggest(suggest.NewPrefixQuery("nba"), 10)

Queries that would compile into oversized automata fail with a work limit
error instead of stalling the server.

# Command Line Flags

The following flags control application behavior:

	-data string
	    Dictionary file with weighted, context-tagged entries (default "data/dictionary.bin")
	-config string
	    Explicit config file path (overrides the default search)
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return (default from config)
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-no-filter
	    Disable input filtering for debugging

The application automatically resolves dictionary and config paths relative
to the executable location, supporting both development and production
deployments.

# Filtering

Input filtering removes numeric-only, symbol-laden, and repetitive prefixes
by default to improve suggestion relevance, though this can be disabled for
debugging purposes. Context tokens are validated before compilation: the
three reserved bytes near the low end of the byte range belong to the key
encoding and are rejected in both tags and prefixes.
*/
package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/contextserve/internal/cli"
	"github.com/bastiangx/contextserve/internal/logger"
	"github.com/bastiangx/contextserve/internal/utils"
	"github.com/bastiangx/contextserve/pkg/config"
	"github.com/bastiangx/contextserve/pkg/dictionary"
	"github.com/bastiangx/contextserve/pkg/server"
	"github.com/bastiangx/contextserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.2.0-beta"
	AppName = "contextserve"
	gh      = "https://github.com/bastiangx/contextserve"

	defaultDictArg = "data/dictionary.bin"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		os.Stderr.WriteString("\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	// custom Flags
	showVersion := flag.Bool("version", false, "Show current version")
	dictFile := flag.String("data", defaultDictArg, "Dictionary file with weighted, context-tagged entries")
	configFile := flag.String("config", "", "Explicit config file path (overrides the default search)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.Suggest.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.Server.MinPrefix, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.Server.MaxPrefix, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", false, "Disable input filtering (DBG only) - accepts raw prefixes (numbers, symbols, etc)")

	flag.Parse()

	if *showVersion {
		banner := logger.Default("")

		styles := log.DefaultStyles()

		styles.Values["version"] = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
			Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})

		styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})

		banner.SetStyles(styles)

		banner.Print("")
		banner.Print("[ ContextServe ] Context-aware completions, served fast!")
		banner.Print("", "version", Version)
		banner.Print("")
		banner.Print("use -h or --help to see available options")
		banner.Print("Github Repo", "gh", gh)

		os.Exit(0)
	}

	// Initialize path resolver for robust path handling
	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Error("Either env is not set or system is not supported")
		log.Error("Did you forget to run the build or install scripts?")
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}

	if *debugMode {
		log.SetDefault(logger.NewWithConfig("", log.DebugLevel, true, true, log.TextFormatter))
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, activePath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	// The -data flag wins; the config file supplies the path when the
	// flag is untouched.
	dictArg := *dictFile
	if appConfig.Dict.Path != "" && dictArg == defaultDictArg {
		dictArg = appConfig.Dict.Path
	}

	resolvedDictPath, err := pathResolver.GetDictPath(dictArg)
	if err != nil {
		log.Fatalf("Failed to resolve dictionary path: (%v)", err)
	}
	log.Debugf("Using dictionary at: %s", resolvedDictPath)

	index := suggest.NewIndex()
	entries, err := dictionary.LoadIntoIndex(resolvedDictPath, index)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warnf("No dictionary at %s, starting with an empty index...", resolvedDictPath)
		} else {
			log.Errorf("Failed to load dictionary: %v", err)
			log.Debugf("Path diagnostics: %v", pathResolver.DiagnosePathIssues(dictArg))
			os.Exit(1)
		}
	}
	log.Debugf("Indexed %d dictionary entries", entries)

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	// NOTE: Server interface has vastly different parameters compared to CLI and what it accepts.
	if *cliMode {
		log.SetReportTimestamp(false)
		appConfig.Server.MinPrefix = *minPrefix
		appConfig.Server.MaxPrefix = *maxPrefix
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		searcher := suggest.NewSearcher(index, appConfig.Suggest.WorkLimit)
		inputHandler := cli.NewInputHandler(searcher, appConfig, *limit, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(index, appConfig, resolvedDictPath)

	showStartupInfo(resolvedDictPath, entries)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dictPath string, entries int) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("==============")
	println(" ContextServe ")
	println("==============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Info("init: OK")
	log.Infof("dictionary: ( %s )", dictPath)
	log.Infof("entries: [ %d ]", entries)
	log.Info("status: ready")
	println("==============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
