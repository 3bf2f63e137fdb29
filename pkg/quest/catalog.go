package quest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Catalog holds every quest definition known to the bot. It is loaded
// once at startup and never modified afterward; a catalog edit takes
// effect on the next process restart.
type Catalog struct {
	quests []Definition
}

// catalogFile is the on-disk shape of a quest catalog document.
type catalogFile struct {
	Quests []Definition `json:"quests"`
}

// LoadCatalog reads and validates a quest catalog from a JSON file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog builds a catalog from raw JSON.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quest catalog: %w", err)
	}
	c := &Catalog{quests: f.Quests}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every definition and rejects duplicate quest ids.
func (c *Catalog) Validate() error {
	if len(c.quests) == 0 {
		return fmt.Errorf("quest catalog is empty")
	}
	seen := make(map[int]bool, len(c.quests))
	for i := range c.quests {
		d := &c.quests[i]
		if seen[d.ID] {
			return fmt.Errorf("duplicate quest id %d", d.ID)
		}
		seen[d.ID] = true
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindQuestByID returns the definition with the given id, or nil if
// the catalog has no such quest.
func (c *Catalog) FindQuestByID(id int) *Definition {
	for i := range c.quests {
		if c.quests[i].ID == id {
			return &c.quests[i]
		}
	}
	return nil
}

// Default returns the first quest in the catalog, used by startquest.
func (c *Catalog) Default() *Definition {
	return &c.quests[0]
}

// Len reports how many quests the catalog defines.
func (c *Catalog) Len() int {
	return len(c.quests)
}

// Quests returns every definition in catalog order.
func (c *Catalog) Quests() []Definition {
	return c.quests
}
