// Package main provides the ThreadVoice TUI application: it opens a
// discussion thread in a browser, expands the comment tree within a bounded
// budget, and reads the thread aloud while highlighting the spoken node.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"

	appconfig "github.com/entrhq/threadvoice/pkg/config"
	"github.com/entrhq/threadvoice/pkg/document/shreddit"
	"github.com/entrhq/threadvoice/pkg/logging"
	"github.com/entrhq/threadvoice/pkg/sanitize"
	"github.com/entrhq/threadvoice/pkg/session"
	"github.com/entrhq/threadvoice/pkg/speech"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to config file (default ~/.threadvoice/config.json)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ThreadVoice v%s\n", version)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: threadvoice [flags] <thread-url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	url := flag.Arg(0)

	if err := run(url, *configPath); err != nil {
		log.Fatalf("threadvoice: %v", err)
	}
}

func run(url, configPath string) error {
	if err := appconfig.Initialize(configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	reader := appconfig.GetReader()
	speechCfg := appconfig.GetSpeech()

	overrides, err := appconfig.ParseEnv()
	if err != nil {
		return err
	}
	overrides.Apply(reader, speechCfg)

	logger, err := logging.NewLogger("main")
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Close()
	logger.Infof("starting threadvoice v%s for %s", version, url)

	filter, err := sanitize.NewAuthorFilter(reader.AuthorFilters)
	if err != nil {
		return fmt.Errorf("invalid author filter config: %w", err)
	}

	engine, err := speech.NewExecEngine(speech.ExecConfig{
		Command: speechCommand(speechCfg),
		Args:    speechCfg.Args,
		Voices:  speechCfg.SelectedVoices,
	}, logger)
	if err != nil {
		return err
	}

	browser, err := shreddit.Launch(shreddit.BrowserOptions{Headless: reader.Headless}, logger)
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	defer browser.Close()

	if err := browser.Navigate(url); err != nil {
		return err
	}

	probe := shreddit.NewProbe(browser.Page(), logger)
	controller := session.NewController(probe, probe, engine,
		session.WithLogger(logger),
		session.WithAuthorFilter(filter),
	)
	defer controller.Cleanup()

	m := newModel(controller, url, buildRequest(reader, speechCfg), speechCfg.Speed, speechCfg.UniqueVoices)
	program := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}

	// Persist preferences adjusted during the session.
	state := controller.State().Playback
	speechCfg.Speed = state.Speed
	speechCfg.UniqueVoices = state.UniqueVoices
	if err := appconfig.Global().SaveAll(); err != nil {
		logger.Warnf("failed to save config: %v", err)
	}

	return nil
}

// buildRequest translates stored preferences into the extraction request.
func buildRequest(reader *appconfig.ReaderSection, speechCfg *appconfig.SpeechSection) session.ExtractRequest {
	return session.ExtractRequest{
		MaxDepth:       reader.MaxDepth,
		MaxTopLevel:    reader.MaxTopLevelComments,
		MaxTotal:       reader.MaxTotalComments,
		Strategy:       reader.Strategy,
		VoiceLocale:    speechCfg.VoiceLocale,
		SelectedVoices: speechCfg.SelectedVoices,
	}
}

// speechCommand resolves the synthesizer command, defaulting per platform.
func speechCommand(speechCfg *appconfig.SpeechSection) string {
	if speechCfg.Command != "" {
		return speechCfg.Command
	}
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak-ng"
}
