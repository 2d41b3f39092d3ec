package engage

import "time"

// Fixed offsets from the event start time.
const (
	previewLead    = 72 * time.Hour
	reminder24Lead = 24 * time.Hour
	reminder1Lead  = time.Hour
	followUpLag    = 2 * time.Hour
)

// PlannedJob is one communication the planner decided should fire.
type PlannedJob struct {
	Kind JobKind
	Due  time.Time
}

// Plan computes the due time for every job kind relative to the event start
// and drops the ones already in the past.
//
// The follow-up is the deliberate exception: it is scheduled even when the
// event has already started (or finished), because it is conditioned on the
// event having occurred, not on registration lead time. A past-due follow-up
// simply fires immediately.
func Plan(eventTime, now time.Time) []PlannedJob {
	candidates := []PlannedJob{
		{Kind: KindPreview, Due: eventTime.Add(-previewLead)},
		{Kind: KindReminder24, Due: eventTime.Add(-reminder24Lead)},
		{Kind: KindReminder1, Due: eventTime.Add(-reminder1Lead)},
		{Kind: KindStart, Due: eventTime},
		{Kind: KindFollowUp, Due: eventTime.Add(followUpLag)},
	}

	out := make([]PlannedJob, 0, len(candidates))
	for _, c := range candidates {
		if c.Kind != KindFollowUp && !c.Due.After(now) {
			continue
		}
		out = append(out, c)
	}
	return out
}
