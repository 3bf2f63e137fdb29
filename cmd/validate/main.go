package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/dinobot/pkg/quest"
)

// Validates a quest catalog file before it ships. Beyond the load-time
// checks, this lints the catalog-authoring constraint that counter
// thresholds climb monotonically within a quest, so a single counter
// increment can never satisfy two stages at once.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <quests.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("Validating %s...\n", filename)

	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		fmt.Fprintf(os.Stderr, "Validation failed: quest catalog must have .json extension: %s\n", filename)
		os.Exit(1)
	}

	catalog, err := quest.LoadCatalog(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	var warnings []string
	for _, d := range catalog.Quests() {
		warnings = append(warnings, lintThresholds(&d)...)
	}
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	fmt.Println("Quest catalog is valid!")
}

// lintThresholds warns when a later stage of the same counter task has
// a threshold at or below an earlier stage's, which would skip a
// stage notification at runtime.
func lintThresholds(d *quest.Definition) []string {
	var warnings []string
	lastByTask := make(map[quest.TaskKind]int)

	for _, s := range d.Stages {
		threshold := 0
		switch s.Task {
		case quest.TaskSendMessage:
			threshold = s.MessageCount
		case quest.TaskGainXP:
			threshold = s.XPRequired
		case quest.TaskLevelUpDino:
			threshold = s.LevelRequired
		case quest.TaskWinBattle:
			threshold = s.BattleCount
		case quest.TaskCollectEggs:
			threshold = s.EggCount
		case quest.TaskExplore:
			threshold = s.ExplorationCount
		default:
			continue
		}

		if prev, ok := lastByTask[s.Task]; ok && threshold <= prev {
			warnings = append(warnings, fmt.Sprintf(
				"quest %d (%s): stage %d %s threshold %d does not exceed earlier stage's %d",
				d.ID, d.Name, s.Stage, s.Task, threshold, prev))
		}
		lastByTask[s.Task] = threshold
	}
	return warnings
}
