package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bkyoung/sectriage/internal/adapter/cli"
	githubadapter "github.com/bkyoung/sectriage/internal/adapter/github"
	"github.com/bkyoung/sectriage/internal/adapter/llm"
	"github.com/bkyoung/sectriage/internal/adapter/llm/factory"
	jsonoutput "github.com/bkyoung/sectriage/internal/adapter/output/json"
	"github.com/bkyoung/sectriage/internal/adapter/output/markdown"
	"github.com/bkyoung/sectriage/internal/adapter/output/sarif"
	storeadapter "github.com/bkyoung/sectriage/internal/adapter/store"
	"github.com/bkyoung/sectriage/internal/adapter/store/sqlite"
	"github.com/bkyoung/sectriage/internal/config"
	"github.com/bkyoung/sectriage/internal/usecase/analyze"
	"github.com/bkyoung/sectriage/internal/version"
)

// Exit codes. Configuration failures get their own code so CI wrappers can
// distinguish "fix your credentials" from "the analysis failed".
const (
	exitSuccess      = 0
	exitGeneralError = 1
	exitConfigError  = 2
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			os.Exit(exitSuccess)
		}
		log.Println(llm.RedactURLSecrets(err.Error()))
		os.Exit(exitCode(err))
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "sectriage",
	})
	if err != nil {
		return err
	}

	var logger llm.Logger
	if cfg.Logging.Enabled {
		logger = buildLogger(cfg.Logging)
	}

	caller, err := factory.NewCaller(ctx, cfg.LLM, logger)
	if err != nil {
		return err
	}
	client := caller.Client()

	deps := cli.Dependencies{
		Analyzer:  analyze.NewAnalyzer(caller),
		Validator: client,
		Reporter:  jsonoutput.NewWriter(client.Provider(), client.NativeModel()),
		Reporters: map[string]cli.ReportWriter{
			"markdown": markdown.NewWriter(client.Provider(), client.NativeModel()),
			"sarif":    sarif.NewWriter(client.Provider(), client.NativeModel()),
		},
		Provider: client.Provider(),
		Model:    client.NativeModel(),
		Version:  version.Version,
	}

	if cfg.GitHub.Token != "" {
		deps.Fetcher = githubadapter.NewContextFetcher(cfg.GitHub.Token)
	}

	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else if st, err := sqlite.NewStore(cfg.Store.Path); err != nil {
			log.Printf("warning: failed to initialize store: %v", err)
		} else {
			bridge := storeadapter.NewBridge(st, client.Provider(), client.NativeModel())
			defer bridge.Close()
			deps.Recorder = bridge
		}
	}

	root := cli.NewRootCommand(deps)
	return root.ExecuteContext(ctx)
}

func exitCode(err error) int {
	var classified *llm.Error
	if errors.As(err, &classified) {
		switch classified.Kind {
		case llm.ErrKindConfiguration, llm.ErrKindUnsupportedProvider:
			return exitConfigError
		}
	}
	return exitGeneralError
}

func buildLogger(cfg config.LoggingConfig) llm.Logger {
	level := llm.LogLevelInfo
	switch cfg.Level {
	case "debug":
		level = llm.LogLevelDebug
	case "error":
		level = llm.LogLevelError
	}

	format := llm.LogFormatHuman
	if cfg.Format == "json" {
		format = llm.LogFormatJSON
	}

	return llm.NewDefaultLogger(level, format, cfg.RedactAPIKeys)
}

func defaultConfigPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sectriage"))
	}
	return paths
}
