package engage

import (
	"testing"
	"time"
)

func kinds(jobs []PlannedJob) map[JobKind]time.Time {
	m := make(map[JobKind]time.Time, len(jobs))
	for _, j := range jobs {
		m[j.Kind] = j.Due
	}
	return m
}

func TestPlanFarFutureEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eventTime := now.Add(100 * time.Hour)

	jobs := Plan(eventTime, now)
	if len(jobs) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(jobs))
	}

	got := kinds(jobs)
	want := map[JobKind]time.Time{
		KindPreview:    eventTime.Add(-72 * time.Hour),
		KindReminder24: eventTime.Add(-24 * time.Hour),
		KindReminder1:  eventTime.Add(-time.Hour),
		KindStart:      eventTime,
		KindFollowUp:   eventTime.Add(2 * time.Hour),
	}
	for k, due := range want {
		if !got[k].Equal(due) {
			t.Fatalf("kind %s: expected due %v, got %v", k, due, got[k])
		}
	}
}

func TestPlanSkipsPastDueJobs(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// 10h out: preview (T-72h) and reminder_24h (T-24h) are already past.
	eventTime := now.Add(10 * time.Hour)

	jobs := Plan(eventTime, now)
	got := kinds(jobs)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d (%v)", len(jobs), got)
	}
	for _, k := range []JobKind{KindReminder1, KindStart, KindFollowUp} {
		if _, ok := got[k]; !ok {
			t.Fatalf("expected kind %s to survive", k)
		}
	}
}

func TestPlanPastEventKeepsFollowUp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eventTime := now.Add(-30 * time.Hour)

	jobs := Plan(eventTime, now)
	if len(jobs) != 1 {
		t.Fatalf("expected only the follow-up, got %d jobs", len(jobs))
	}
	if jobs[0].Kind != KindFollowUp {
		t.Fatalf("expected follow_up, got %s", jobs[0].Kind)
	}
	// Past-due follow-up keeps its computed due time; the scheduler fires it
	// immediately.
	if !jobs[0].Due.Equal(eventTime.Add(2 * time.Hour)) {
		t.Fatalf("unexpected follow-up due time %v", jobs[0].Due)
	}
}

func TestPlanDueExactlyNowIsSkipped(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// start lands exactly on now: due > now is required, so it is skipped.
	jobs := Plan(now, now)
	got := kinds(jobs)
	if _, ok := got[KindStart]; ok {
		t.Fatalf("start due exactly now should be skipped")
	}
	if _, ok := got[KindFollowUp]; !ok {
		t.Fatalf("follow_up should always be planned")
	}
}

func TestJobIDDeterministic(t *testing.T) {
	a := JobID(KindStart, 7, 42)
	b := JobID(KindStart, 7, 42)
	if a != b {
		t.Fatalf("JobID not deterministic: %q vs %q", a, b)
	}
	if a == JobID(KindStart, 42, 7) {
		t.Fatalf("JobID collides across swapped user/event ids")
	}
	if a == JobID(KindFollowUp, 7, 42) {
		t.Fatalf("JobID collides across kinds")
	}
}

func TestMessageType(t *testing.T) {
	cases := []struct {
		kind JobKind
		want string
	}{
		{KindPreview, "content_preview"},
		{KindReminder24, "reminder_24h"},
		{KindReminder1, "reminder_1h"},
		{KindStart, "event_starting"},
		{KindFollowUp, "follow_up"},
	}
	for _, c := range cases {
		if got := c.kind.MessageType(); got != c.want {
			t.Fatalf("kind %s: expected %q, got %q", c.kind, c.want, got)
		}
	}
}
