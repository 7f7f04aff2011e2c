package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"ai_todo/internal/chat"
	"ai_todo/internal/client"
	"ai_todo/internal/identity"
	"ai_todo/internal/logger"
	"ai_todo/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	server := flag.String("server", "", "task server URL (overrides config.toml)")
	logout := flag.Bool("logout", false, "forget the saved identifier and exit")
	flag.Parse()

	// the screen belongs to the TUI
	logger.Init("error", false, io.Discard)

	dir, err := identity.DefaultDir()
	if err != nil {
		fail(err)
	}
	ids := identity.NewStore(dir)

	if *logout {
		if err := ids.Clear(); err != nil {
			fail(err)
		}
		fmt.Println("identifier cleared")
		return
	}

	cfg, err := client.LoadConfig(dir)
	if err != nil {
		fail(err)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}

	owner, err := ids.Load()
	if err != nil {
		// unreadable state behaves like a fresh install
		owner = ""
	}

	api := client.NewAPI(cfg.ServerURL)
	m := tui.New(api, chat.NewRelay(api), ids, owner)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "todo:", err)
	os.Exit(1)
}
