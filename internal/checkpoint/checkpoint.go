// package checkpoint persists migration progress so an interrupted clone can
// resume without re-sending items already delivered to the destination.
//
// One checkpoint exists per (source channel, destination title) pair while a
// migration is in flight; it is deleted only on full successful completion.
package checkpoint

import (
	"fmt"
	"strings"
)

// Checkpoint is the durable progress record for one in-flight migration.
//
// Processed only advances, in the same order as source message IDs.
type Checkpoint struct {
	ChannelID    int64  `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
	Processed    int    `json:"messages_processed"`
}

// Store is a durable key-value record of migration progress.
//
// Load returns (nil, nil) when no checkpoint exists or the persisted state
// cannot be parsed; a corrupt checkpoint means starting fresh, never a fatal
// error. Delete on a missing key is not an error.
type Store interface {
	Load(key string) (*Checkpoint, error)
	Save(key string, cp *Checkpoint) error
	Delete(key string) error
}

// Key derives the deterministic store key for a (source, destination title)
// pair. Re-running the same logical migration reattaches to the same
// checkpoint; a different destination title starts an independent one.
func Key(sourceID int64, destTitle string) string {
	return fmt.Sprintf("checkpoint_%d_%s", sourceID, strings.ReplaceAll(destTitle, " ", "_"))
}
