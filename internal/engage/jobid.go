package engage

import "fmt"

// JobKind identifies one of the fixed communications tied to an event's
// timeline.
type JobKind string

const (
	KindPreview    JobKind = "preview"
	KindReminder24 JobKind = "reminder_24h"
	KindReminder1  JobKind = "reminder_1h"
	KindStart      JobKind = "start"
	KindFollowUp   JobKind = "follow_up"
)

// AllKinds lists every job kind in chronological order of their due times.
// Cancellation iterates this list so a registration's jobs can be removed
// without any lookup table beside the scheduler itself.
var AllKinds = [5]JobKind{KindPreview, KindReminder24, KindReminder1, KindStart, KindFollowUp}

// JobID derives the scheduler id for a (kind, user, event) triple.
//
// It is a pure function: scheduling and cancellation call sites derive the
// same id independently, which is what makes cancellation idempotent. Keep
// every id derivation in the codebase going through here.
func JobID(kind JobKind, userID, eventID int64) string {
	return fmt.Sprintf("%s:u%d:e%d", kind, userID, eventID)
}

// MessageType maps a job kind to the composer's message type.
func (k JobKind) MessageType() string {
	switch k {
	case KindPreview:
		return "content_preview"
	case KindStart:
		return "event_starting"
	default:
		return string(k)
	}
}
