package thread

import (
	"time"

	"github.com/qaaph-zyld/outlook-threads/pkg/types"
)

// Classify assigns the lifecycle state of a conversation from the age of
// its most recent message versus the archive threshold. The reference
// time is supplied by the caller so classification stays deterministic.
//
// A conversation is Archived only when its last message is strictly older
// than the threshold; an age exactly equal to the threshold is Active.
func Classify(conv *types.Conversation, ref time.Time, threshold time.Duration) types.LifecycleState {
	last := conv.LastMessage()
	if last == nil {
		return types.StateActive
	}
	if ref.Sub(last.Timestamp) > threshold {
		return types.StateArchived
	}
	return types.StateActive
}
