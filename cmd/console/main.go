package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/dinobot/internal/battle"
	"github.com/jwebster45206/dinobot/internal/bot"
	"github.com/jwebster45206/dinobot/internal/config"
	"github.com/jwebster45206/dinobot/internal/cooldown"
	"github.com/jwebster45206/dinobot/internal/economy"
	"github.com/jwebster45206/dinobot/internal/hatchery"
	"github.com/jwebster45206/dinobot/internal/logger"
	"github.com/jwebster45206/dinobot/internal/progression"
	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/quest"
)

// consoleUserID is the synthetic user the console chats as. ADMIN_IDS
// can include it to try admin commands locally.
const consoleUserID = "console"

// The console runs the full message path — progression first, then
// command routing — against local storage, without a Discord token.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	store, err := storage.NewFileStore(cfg.DataDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	catalog, err := quest.LoadCatalog(cfg.QuestFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load quest catalog: %v\n", err)
		os.Exit(1)
	}
	jobs, err := economy.LoadJobs(cfg.JobsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load jobs table: %v\n", err)
		os.Exit(1)
	}

	cooldowns := cooldown.NewLedger(store)
	engine := progression.NewEngine(store, log)
	dispatcher := bot.NewDispatcher(cfg.CommandPrefix, engine, append(cfg.AdminIDs, consoleUserID), log)
	bot.NewCommands(
		catalog,
		engine,
		hatchery.NewService(store, log),
		economy.NewService(store, cooldowns, jobs, log),
		battle.NewService(store, log),
		cooldowns,
	).RegisterAll(dispatcher)

	ui := NewConsoleUI(dispatcher, cfg.CommandPrefix)
	p := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Console error: %v\n", err)
		os.Exit(1)
	}
}
