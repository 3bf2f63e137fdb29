package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/dinobot/internal/storage"
	"github.com/jwebster45206/dinobot/pkg/quest"
	"github.com/jwebster45206/dinobot/pkg/user"
)

// xpPerMessage is the fixed XP granted for each observed chat message
// while a gain_xp stage is active. Deliberately unthrottled.
const xpPerMessage = 5

// defaultExplorationArea is where explore-task outings are recorded.
const defaultExplorationArea = "default_area"

// ErrQuestAlreadyStarted is returned by StartQuest when the user is
// already on the quest.
var ErrQuestAlreadyStarted = errors.New("quest already started")

// NotificationKind distinguishes the two progression announcements.
type NotificationKind string

const (
	StageAdvanced  NotificationKind = "stage_advanced"
	QuestCompleted NotificationKind = "quest_completed"
)

// Notification describes a stage advance or quest completion for the
// transport to render back to the originating channel. Description is
// the newly entered stage's description; it is empty for completions.
type Notification struct {
	Kind        NotificationKind
	QuestID     int
	QuestName   string
	Stage       int
	Description string
}

// Engine advances a user's active quest in response to observed chat
// messages. It owns no state of its own; everything lives in the user
// record behind the storage port.
type Engine struct {
	store  storage.UserStore
	logger *slog.Logger
}

// NewEngine creates a progression engine.
func NewEngine(store storage.UserStore, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// OnMessage is called once for every inbound chat message, before
// command routing. It increments the active stage's task counter and,
// when the stage's completion criterion is met, advances the quest by
// exactly one stage or completes it.
//
// A user with no record or no active quest is a no-op. Corrupted
// quest state and unknown task kinds are logged and aborted without
// mutating the record. The returned error covers storage failures
// only; the caller logs it and must not crash.
func (e *Engine) OnMessage(ctx context.Context, userID string) (*Notification, error) {
	rec, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	q := rec.ActiveQuest()
	if q == nil {
		return nil, nil
	}

	if len(q.Stages) == 0 || q.CurrentStage < 1 || q.CurrentStage > len(q.Stages) {
		e.logger.Error("Corrupted quest state, aborting progression",
			"user_id", userID,
			"quest_id", q.ID,
			"current_stage", q.CurrentStage,
			"stage_count", len(q.Stages))
		return nil, nil
	}

	stage := &q.Stages[q.CurrentStage-1]

	completed, ok := e.applyTask(rec, stage)
	if !ok {
		e.logger.Error("Unknown task kind, aborting progression",
			"user_id", userID,
			"quest_id", q.ID,
			"stage", q.CurrentStage,
			"task", stage.Task)
		return nil, nil
	}

	if !completed {
		if err := e.store.Save(ctx, userID, rec); err != nil {
			return nil, fmt.Errorf("failed to save user record: %w", err)
		}
		return nil, nil
	}

	// Reward granting is separate from task progress: a stage that
	// rewards an egg grants it whether or not the task touched eggs.
	if stage.Reward != nil && stage.Reward.Type == quest.RewardEgg {
		rec.AddEgg()
	}

	var n *Notification
	if q.CurrentStage < len(q.Stages) {
		q.CurrentStage++
		rec.XP = 0
		n = &Notification{
			Kind:        StageAdvanced,
			QuestID:     q.ID,
			QuestName:   q.Name,
			Stage:       q.CurrentStage,
			Description: q.Stages[q.CurrentStage-1].Description,
		}
	} else {
		n = &Notification{
			Kind:      QuestCompleted,
			QuestID:   q.ID,
			QuestName: q.Name,
			Stage:     q.CurrentStage,
		}
		rec.RemoveQuest(q.ID)
	}

	if err := e.store.Save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}
	return n, nil
}

// applyTask mutates the record's task-specific counters for the
// active stage and reports whether the stage's completion criterion
// is now satisfied. The second return is false only for an unknown
// task kind, in which case the record was not touched.
func (e *Engine) applyTask(rec *user.Record, stage *quest.Stage) (completed bool, ok bool) {
	switch stage.Task {
	case quest.TaskSendMessage:
		rec.MessageCount++
		return rec.MessageCount >= stage.MessageCount, true

	case quest.TaskGainXP:
		rec.XP += xpPerMessage
		return rec.XP >= stage.XPRequired, true

	case quest.TaskHatchEgg:
		egg := rec.OldestUnhatchedEgg()
		if egg == nil {
			return false, true
		}
		egg.Hatched = true
		return true, true

	case quest.TaskLevelUpDino:
		d := rec.EnsureDino()
		d.Level++
		return d.Level >= stage.LevelRequired, true

	case quest.TaskWinBattle:
		rec.BattleStats.Participated++
		rec.BattleStats.Won++
		return rec.BattleStats.Won >= stage.BattleCount, true

	case quest.TaskCollectEggs:
		count := rec.AddEgg()
		return count >= stage.EggCount, true

	case quest.TaskEvolveDino:
		d := rec.EnsureDino()
		d.GrowthStage = stage.GrowthStageRequired
		return d.GrowthStage == stage.GrowthStageRequired, true

	case quest.TaskExplore:
		rec.Explorations = append(rec.Explorations, user.Exploration{Area: defaultExplorationArea})
		return len(rec.Explorations) >= stage.ExplorationCount, true

	case quest.TaskCompleteExploration:
		exp := rec.OldestOpenExploration()
		if exp == nil {
			return false, true
		}
		exp.Completed = true
		return true, true

	default:
		return false, false
	}
}

// StartQuest puts the user on the given quest, snapshotting its
// stages into the record so later catalog edits cannot change a quest
// in progress.
func (e *Engine) StartQuest(ctx context.Context, userID string, def *quest.Definition) (*user.ActiveQuest, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to start invalid quest: %w", err)
	}

	rec, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		rec = user.NewRecord()
	}

	for _, q := range rec.Quests {
		if q.ID == def.ID {
			return nil, ErrQuestAlreadyStarted
		}
	}

	stages := make([]quest.Stage, len(def.Stages))
	copy(stages, def.Stages)

	aq := user.ActiveQuest{
		ID:           def.ID,
		Name:         def.Name,
		CurrentStage: 1,
		Stages:       stages,
	}
	rec.Quests = append(rec.Quests, aq)

	if err := e.store.Save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("failed to save user record: %w", err)
	}
	e.logger.Info("Quest started", "user_id", userID, "quest_id", def.ID, "quest", def.Name)
	return &aq, nil
}

// Progress describes where a user stands in their active quest.
// Percent is only meaningful for send_message stages; it is -1 when
// the stage's progress cannot be expressed as a percentage.
type Progress struct {
	QuestName   string
	Stage       int
	StageCount  int
	Description string
	Percent     float64
}

// QuestProgress reports the user's active quest status, or nil when
// no quest is active.
func (e *Engine) QuestProgress(ctx context.Context, userID string) (*Progress, error) {
	rec, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	q := rec.ActiveQuest()
	if q == nil {
		return nil, nil
	}
	if len(q.Stages) == 0 || q.CurrentStage < 1 || q.CurrentStage > len(q.Stages) {
		return nil, fmt.Errorf("quest state is corrupted for user %s (quest %d, stage %d of %d)",
			userID, q.ID, q.CurrentStage, len(q.Stages))
	}

	stage := &q.Stages[q.CurrentStage-1]
	p := &Progress{
		QuestName:   q.Name,
		Stage:       q.CurrentStage,
		StageCount:  len(q.Stages),
		Description: stage.Description,
		Percent:     -1,
	}
	if stage.Task == quest.TaskSendMessage && stage.MessageCount > 0 {
		pct := float64(rec.MessageCount) / float64(stage.MessageCount) * 100
		if pct > 100 {
			pct = 100
		}
		p.Percent = pct
	}
	return p, nil
}
