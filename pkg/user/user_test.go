package user

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/dinobot/pkg/quest"
)

func TestAddEgg(t *testing.T) {
	r := NewRecord()

	assert.Equal(t, 1, r.AddEgg())
	assert.Equal(t, 2, r.AddEgg())
	assert.Equal(t, 3, r.AddEgg())

	for i, egg := range r.Eggs {
		assert.Equal(t, i+1, egg.ID)
		assert.False(t, egg.Hatched)
	}
}

func TestOldestUnhatchedEgg(t *testing.T) {
	r := NewRecord()
	assert.Nil(t, r.OldestUnhatchedEgg())

	r.AddEgg()
	r.AddEgg()
	r.AddEgg()
	r.Eggs[0].Hatched = true

	egg := r.OldestUnhatchedEgg()
	require.NotNil(t, egg)
	assert.Equal(t, 2, egg.ID)

	// The returned pointer aliases the record so a hatch sticks.
	egg.Hatched = true
	next := r.OldestUnhatchedEgg()
	require.NotNil(t, next)
	assert.Equal(t, 3, next.ID)

	next.Hatched = true
	assert.Nil(t, r.OldestUnhatchedEgg())
}

func TestActiveQuest(t *testing.T) {
	r := NewRecord()
	assert.Nil(t, r.ActiveQuest())

	r.Quests = append(r.Quests,
		ActiveQuest{ID: 1, Name: "First Steps", CurrentStage: 1},
		ActiveQuest{ID: 2, Name: "Second", CurrentStage: 1},
	)

	q := r.ActiveQuest()
	require.NotNil(t, q)
	assert.Equal(t, 1, q.ID)
}

func TestRemoveQuest(t *testing.T) {
	r := NewRecord()
	r.Quests = append(r.Quests,
		ActiveQuest{ID: 1, Name: "A", CurrentStage: 1},
		ActiveQuest{ID: 2, Name: "B", CurrentStage: 1},
	)

	r.RemoveQuest(1)
	require.Len(t, r.Quests, 1)
	assert.Equal(t, 2, r.Quests[0].ID)

	r.RemoveQuest(99) // absent id is a no-op
	assert.Len(t, r.Quests, 1)
}

func TestEnsureDino(t *testing.T) {
	r := NewRecord()
	d := r.EnsureDino()
	require.NotNil(t, d)
	assert.Equal(t, 0, d.Level)

	d.Level = 3
	assert.Same(t, d, r.EnsureDino())
	assert.Equal(t, 3, r.Dino.Level)
}

func TestOldestOpenExploration(t *testing.T) {
	r := NewRecord()
	assert.Nil(t, r.OldestOpenExploration())

	r.Explorations = append(r.Explorations,
		Exploration{Area: "default_area", Completed: true},
		Exploration{Area: "default_area"},
	)

	exp := r.OldestOpenExploration()
	require.NotNil(t, exp)
	exp.Completed = true
	assert.Nil(t, r.OldestOpenExploration())
}

func TestRecordJSONShape(t *testing.T) {
	r := NewRecord()
	r.Metadata.Points = 500
	r.Metadata.Cooldowns["work"] = 1700000000000
	r.MessageCount = 7
	r.XP = 15
	r.AddEgg()
	r.Pets = append(r.Pets, Pet{
		Name:        "Tyrannosaurus",
		Rarity:      "Rare",
		Level:       1,
		GrowthStage: "Hatchling",
		Stats:       Stats{Health: 100, Attack: 50, Defense: 40, Speed: 30},
	})
	r.Quests = append(r.Quests, ActiveQuest{
		ID: 1, Name: "First Steps", CurrentStage: 1,
		Stages: []quest.Stage{{Stage: 1, Description: "Say hello", Task: quest.TaskSendMessage, MessageCount: 2}},
	})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	// Field names are the on-disk contract with existing user files.
	for _, key := range []string{"metadata", "messageCount", "xp", "quests", "eggs", "pets", "battleStats"} {
		assert.Contains(t, doc, key)
	}

	var restored Record
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, 500, restored.Metadata.Points)
	assert.Equal(t, int64(1700000000000), restored.Metadata.Cooldowns["work"])
	assert.Equal(t, 1, restored.Quests[0].Stages[0].Stage)
	assert.Equal(t, "Hatchling", restored.Pets[0].GrowthStage)
}
