package cloner

import (
	"fmt"

	"tgclone/internal/telegram"
)

// ProgressUpdate represents a progress event during a long-running clone.
//
// Used to send real-time updates to the CLI layer for display. The core is
// fully usable with a nil progress channel.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced consumers
}

// Operation phase enumeration
type Phase int

const (
	Provision Phase = iota
	DetectProtection
	Collect
	Copy
	Finalize
	Related
	Announce
)

func (p Phase) String() string {
	switch p {
	case Provision:
		return "provision"
	case DetectProtection:
		return "detect_protection"
	case Collect:
		return "collect"
	case Copy:
		return "copy"
	case Finalize:
		return "finalize"
	case Related:
		return "related"
	case Announce:
		return "announce"
	default:
		return ""
	}
}

func provisionUpdate(title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Provision,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating destination channel: %s...", title),
	}
}

func reuseChannelUpdate(ch *telegram.Channel, processed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Provision,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resuming into existing channel %s (%d items already processed)", ch.Title, processed),
		Data:    ch,
	}
}

func protectionUpdate(protected bool) ProgressUpdate {
	msg := "Source allows content extraction"
	if protected {
		msg = "Source has content protection: media will be replaced by descriptions"
	}
	return ProgressUpdate{Phase: DetectProtection, Step: 1, Total: 1, Message: msg}
}

func collectedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Collect,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Collected %d items from source", count),
	}
}

func copyUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Copy,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Copying items...", step, total),
	}
}

func finalizeUpdate(res *Result) ProgressUpdate {
	return ProgressUpdate{
		Phase: Finalize,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Done: %d copied, %d media transferred, %d replaced by description, %d skipped, %d errors",
			res.Copied, res.MediaTransferred, res.MediaFallback, res.Skipped, res.Errors),
		Data: res,
	}
}

func relatedFoundUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Related,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Cloning related channel: %s", step, total, name),
	}
}

func announceUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Announce,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Announced related channel: %s", title),
	}
}
