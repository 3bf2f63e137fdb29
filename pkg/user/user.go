package user

import (
	"encoding/json"

	"github.com/jwebster45206/dinobot/pkg/quest"
)

// Metadata carries the economy balance and cooldown expiries for a user.
// Cooldown values are absolute expiry timestamps in epoch milliseconds.
type Metadata struct {
	Points    int              `json:"points"`
	Cooldowns map[string]int64 `json:"cooldowns,omitempty"`
}

// Egg is a collected token that can be hatched into a Pet. Hatched
// flips to true exactly once; eggs are never deleted.
type Egg struct {
	ID      int  `json:"id"`
	Hatched bool `json:"hatched"`
}

// Stats are a pet's base combat attributes.
type Stats struct {
	Health  int `json:"health"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Pet is a hatched dinosaur.
type Pet struct {
	Name        string `json:"name"`
	Rarity      string `json:"rarity"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
	GrowthStage string `json:"growth_stage"`
	Stats       Stats  `json:"stats"`
}

// Dino tracks the quest-facing dinosaur used by the level_up_dino and
// evolve_dino tasks.
type Dino struct {
	Level       int    `json:"level"`
	GrowthStage string `json:"growthStage,omitempty"`
}

// BattleStats accumulate across pet battles and win_battle quest tasks.
type BattleStats struct {
	Participated int `json:"battlesParticipated"`
	Won          int `json:"battlesWon"`
}

// Exploration is one outing into the game world.
type Exploration struct {
	Area      string `json:"area"`
	Completed bool   `json:"completed"`
}

// ActiveQuest is a quest in progress. Stages are snapshotted from the
// catalog at start time so a later catalog edit cannot change a quest
// already underway. CurrentStage is 1-based.
type ActiveQuest struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	CurrentStage int           `json:"current_stage"`
	Stages       []quest.Stage `json:"stages"`
}

// Record is the complete persisted state for one user. One JSON
// document per user id; callers read-modify-write the whole record.
type Record struct {
	Metadata     Metadata                   `json:"metadata"`
	MessageCount int                        `json:"messageCount"`
	XP           int                        `json:"xp"`
	Quests       []ActiveQuest              `json:"quests,omitempty"`
	Eggs         []Egg                      `json:"eggs,omitempty"`
	Pets         []Pet                      `json:"pets,omitempty"`
	Dino         *Dino                      `json:"dino,omitempty"`
	BattleStats  BattleStats                `json:"battleStats"`
	Explorations []Exploration              `json:"explorations,omitempty"`
	Dinos        map[string]json.RawMessage `json:"dinos,omitempty"` // game save slots, opaque to the bot
}

// NewRecord returns an empty record ready to persist.
func NewRecord() *Record {
	return &Record{
		Metadata: Metadata{Cooldowns: make(map[string]int64)},
	}
}

// EnsureCooldowns initializes the cooldown map if the stored document
// predates it.
func (r *Record) EnsureCooldowns() {
	if r.Metadata.Cooldowns == nil {
		r.Metadata.Cooldowns = make(map[string]int64)
	}
}

// ActiveQuest returns the quest currently in progress, or nil. Only
// the first entry is ever consulted; at most one quest is active at a
// time.
func (r *Record) ActiveQuest() *ActiveQuest {
	if len(r.Quests) == 0 {
		return nil
	}
	return &r.Quests[0]
}

// RemoveQuest drops the quest with the given id from the record.
func (r *Record) RemoveQuest(id int) {
	kept := r.Quests[:0]
	for _, q := range r.Quests {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	r.Quests = kept
}

// AddEgg appends a new unhatched egg and returns the total egg count.
// Egg ids are 1-based insertion order.
func (r *Record) AddEgg() int {
	r.Eggs = append(r.Eggs, Egg{ID: len(r.Eggs) + 1, Hatched: false})
	return len(r.Eggs)
}

// OldestUnhatchedEgg returns the first egg in insertion order that has
// not hatched, or nil when every egg has hatched or none exist.
func (r *Record) OldestUnhatchedEgg() *Egg {
	for i := range r.Eggs {
		if !r.Eggs[i].Hatched {
			return &r.Eggs[i]
		}
	}
	return nil
}

// EnsureDino initializes the quest dino if the user has none yet.
func (r *Record) EnsureDino() *Dino {
	if r.Dino == nil {
		r.Dino = &Dino{}
	}
	return r.Dino
}

// OldestOpenExploration returns the first exploration not yet marked
// complete, or nil.
func (r *Record) OldestOpenExploration() *Exploration {
	for i := range r.Explorations {
		if !r.Explorations[i].Completed {
			return &r.Explorations[i]
		}
	}
	return nil
}
