package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vanderheijden86/slideview/pkg/config"
	"github.com/vanderheijden86/slideview/pkg/debug"
	"github.com/vanderheijden86/slideview/pkg/loader"
	"github.com/vanderheijden86/slideview/pkg/location"
	"github.com/vanderheijden86/slideview/pkg/metrics"
	"github.com/vanderheijden86/slideview/pkg/nav"
	"github.com/vanderheijden86/slideview/pkg/ui"
	"github.com/vanderheijden86/slideview/pkg/version"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file (default ~/.config/sv/config.yaml)")
	at := flag.String("at", "", "Start at a slide: '#slide-3', 'slide-3' or '3'")
	locationPath := flag.String("location", "", "Location file holding the current #slide-<id>")
	pick := flag.Bool("pick", false, "Choose the starting slide from a list")
	printFlag := flag.Bool("print", false, "Print the current slide to stdout and exit")
	exportMD := flag.String("export-md", "", "Write the deck as a Markdown handout to `PATH`")
	exportSQLite := flag.String("export-sqlite", "", "Write the deck to a SQLite database at `PATH`")
	exportSnapshot := flag.String("export-snapshot", "", "Write an overview sheet to `PATH` (.svg or .png)")
	metricsFlag := flag.Bool("metrics", false, "Print fetch and render timings to stderr on exit")
	flag.Parse()

	exit := func(code int) {
		if *metricsFlag {
			_ = metrics.WriteSummary(os.Stderr)
		}
		os.Exit(code)
	}

	if *help {
		fmt.Println("Usage: sv [options] [manifest|dir|url]")
		fmt.Println("\nA terminal viewer for slide decks described by slides.json.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Println(version.String())
		os.Exit(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}

	source := cfg.Manifest
	if flag.NArg() > 0 {
		source = flag.Arg(0)
	}

	ld := loader.New(loader.Options{
		Timeout: cfg.Timeout(),
		WarningHandler: func(msg string) {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *exportMD != "" || *exportSQLite != "" || *exportSnapshot != "" {
		targets := exportTargets{Markdown: *exportMD, SQLite: *exportSQLite, Snapshot: *exportSnapshot}
		if err := runExports(ctx, ld, source, cfg, targets, os.Stdout, os.Stderr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}
		exit(0)
	}

	startFragment := ""
	if *at != "" {
		frag, ok := normalizeFragment(*at)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: invalid --at value %q\n", *at)
			exit(2)
		}
		startFragment = frag
	}

	locPath := *locationPath
	if locPath == "" {
		locPath = cfg.LocationFile
	}
	if locPath == "" {
		locPath = location.DefaultPath()
	}
	loc, err := location.Open(locPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: location file unavailable: %v\n", err)
		loc = nil
	}

	if *pick {
		frag, err := pickSlide(ctx, ld, source, startFragment, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}
		startFragment = frag
	}

	if *printFlag {
		start := startFragment
		if start == "" && loc != nil {
			start = loc.Fragment()
		}
		if err := printDeck(ctx, ld, source, cfg, start, terminalWidth(), os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exit(1)
		}
		exit(0)
	}

	if startFragment != "" && loc != nil {
		if err := loc.SetFragment(startFragment); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	opts := ui.Options{
		Source:        source,
		Loader:        ld,
		Location:      loc,
		Debounce:      100 * time.Millisecond,
		Labels:        cfg.Labels,
		Messages:      cfg.Messages,
		NarrowWidth:   cfg.UI.NarrowWidth,
		SidebarWidth:  cfg.UI.SidebarWidth,
		SidebarDocked: cfg.UI.SidebarOpen,
		ShowImages:    cfg.UI.ShowImages,
		Markup:        cfg.UI.Markup,
	}
	m := ui.NewModel(opts)

	err = runTUIProgram(m)
	if loc != nil {
		loc.Close()
	}
	if err != nil {
		fmt.Printf("Error running slide viewer: %v\n", err)
		exit(1)
	}
	exit(0)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// normalizeFragment accepts "#slide-3", "slide-3" or "3".
func normalizeFragment(s string) (string, bool) {
	id, ok := nav.ParseFragment(s)
	if !ok {
		return "", false
	}
	return nav.FragmentFor(id), true
}

func runTUIProgram(m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set SV_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("SV_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}
				debug.Log("sv: auto-close after %dms", ms)
				p.Quit()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
