package scheduler

import "sort"

// TakeSnapshot returns a copy of the scheduler's current state for the
// diagnostics endpoint.
func (s *Service) TakeSnapshot() Snapshot {
	var snap Snapshot

	s.tmu.Lock()
	snap.Pending = make([]JobInfo, 0, len(s.jobs))
	for id, d := range s.jobs {
		snap.Pending = append(snap.Pending, JobInfo{ID: id, Due: d.due})
	}
	s.tmu.Unlock()
	sort.Slice(snap.Pending, func(i, j int) bool {
		if !snap.Pending[i].Due.Equal(snap.Pending[j].Due) {
			return snap.Pending[i].Due.Before(snap.Pending[j].Due)
		}
		return snap.Pending[i].ID < snap.Pending[j].ID
	})

	s.mu.Lock()
	snap.InFlight = s.inFlight
	snap.Crons = make([]string, 0, len(s.crons))
	for _, d := range s.crons {
		snap.Crons = append(snap.Crons, d.name)
	}
	snap.History = make([]HistoryItem, len(s.hist))
	copy(snap.History, s.hist)
	s.mu.Unlock()

	return snap
}
