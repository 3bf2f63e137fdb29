package quest

import "fmt"

// TaskKind identifies the activity a stage requires before it completes.
type TaskKind string

const (
	TaskSendMessage         TaskKind = "send_message"
	TaskGainXP              TaskKind = "gain_xp"
	TaskHatchEgg            TaskKind = "hatch_egg"
	TaskLevelUpDino         TaskKind = "level_up_dino"
	TaskWinBattle           TaskKind = "win_battle"
	TaskCollectEggs         TaskKind = "collect_eggs"
	TaskEvolveDino          TaskKind = "evolve_dino"
	TaskExplore             TaskKind = "explore"
	TaskCompleteExploration TaskKind = "complete_exploration"
)

// Reward is granted when a stage completes. The only reward type
// currently defined is "egg".
type Reward struct {
	Type string `json:"type"`
}

const RewardEgg = "egg"

// Stage is one step of a quest. Task selects which of the threshold
// fields applies; the others are left zero.
type Stage struct {
	Stage       int      `json:"stage"`
	Description string   `json:"description"`
	Task        TaskKind `json:"task"`

	MessageCount        int    `json:"message_count,omitempty"`
	XPRequired          int    `json:"xp_required,omitempty"`
	LevelRequired       int    `json:"level_required,omitempty"`
	BattleCount         int    `json:"battle_count,omitempty"`
	EggCount            int    `json:"egg_count,omitempty"`
	GrowthStageRequired string `json:"growth_stage_required,omitempty"`
	ExplorationCount    int    `json:"exploration_count,omitempty"`

	Reward *Reward `json:"reward,omitempty"`
}

// Definition is a quest template from the catalog. Stages are ordered
// and 1-based; a user's active quest snapshots them at start time.
type Definition struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Stages []Stage `json:"stages"`
}

// Validate checks that the definition is internally consistent:
// stages present, numbered 1..n, each with a description and the
// threshold its task requires. Thresholds for counter tasks must be
// positive so a stage can never start already satisfied.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("quest %d: name is required", d.ID)
	}
	if len(d.Stages) == 0 {
		return fmt.Errorf("quest %d (%s): at least one stage is required", d.ID, d.Name)
	}
	for i, s := range d.Stages {
		if s.Stage != i+1 {
			return fmt.Errorf("quest %d (%s): stage at index %d is numbered %d, expected %d", d.ID, d.Name, i, s.Stage, i+1)
		}
		if s.Description == "" {
			return fmt.Errorf("quest %d (%s): stage %d has no description", d.ID, d.Name, s.Stage)
		}
		if err := validateTask(&s); err != nil {
			return fmt.Errorf("quest %d (%s): stage %d: %w", d.ID, d.Name, s.Stage, err)
		}
		if s.Reward != nil && s.Reward.Type != RewardEgg {
			return fmt.Errorf("quest %d (%s): stage %d: unknown reward type %q", d.ID, d.Name, s.Stage, s.Reward.Type)
		}
	}
	return nil
}

func validateTask(s *Stage) error {
	switch s.Task {
	case TaskSendMessage:
		if s.MessageCount <= 0 {
			return fmt.Errorf("send_message requires a positive message_count")
		}
	case TaskGainXP:
		if s.XPRequired <= 0 {
			return fmt.Errorf("gain_xp requires a positive xp_required")
		}
	case TaskLevelUpDino:
		if s.LevelRequired <= 0 {
			return fmt.Errorf("level_up_dino requires a positive level_required")
		}
	case TaskWinBattle:
		if s.BattleCount <= 0 {
			return fmt.Errorf("win_battle requires a positive battle_count")
		}
	case TaskCollectEggs:
		if s.EggCount <= 0 {
			return fmt.Errorf("collect_eggs requires a positive egg_count")
		}
	case TaskEvolveDino:
		if s.GrowthStageRequired == "" {
			return fmt.Errorf("evolve_dino requires a growth_stage_required")
		}
	case TaskExplore:
		if s.ExplorationCount <= 0 {
			return fmt.Errorf("explore requires a positive exploration_count")
		}
	case TaskHatchEgg, TaskCompleteExploration:
		// No threshold; these complete on a successful action.
	case "":
		return fmt.Errorf("task is required")
	default:
		return fmt.Errorf("unknown task kind %q", s.Task)
	}
	return nil
}
