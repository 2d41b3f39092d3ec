package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"engagesphere/pkg/logx"
)

// Config controls job execution limits.
type Config struct {
	// HistorySize bounds the completed-run ring kept for diagnostics.
	HistorySize int
	// TaskTimeout caps each job run. Zero means no deadline.
	TaskTimeout time.Duration
}

type jobDef struct {
	due  time.Time
	task func(ctx context.Context)
}

type cronDef struct {
	name    string
	spec    string
	job     func(ctx context.Context)
	entryID cron.EntryID
}

// HistoryItem records one completed job run.
type HistoryItem struct {
	ID       string
	Due      time.Time
	Started  time.Time
	Took     time.Duration
	Panicked bool
}

// JobInfo describes one pending one-shot job.
type JobInfo struct {
	ID  string
	Due time.Time
}

// Snapshot is a point-in-time view of the scheduler for diagnostics.
type Snapshot struct {
	Pending  []JobInfo
	Crons    []string
	InFlight int
	History  []HistoryItem
}

// Service owns the one-shot job table and the recurring maintenance crons.
//
// One-shot jobs are keyed by caller-supplied id. The timers map holds the
// runtime timers; ver carries a per-id version so a stale timer callback from
// a superseded arm cycle can recognize itself and bail out.
type Service struct {
	mu  sync.Mutex
	log logx.Logger
	cfg Config

	running bool
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	tmu    sync.Mutex
	jobs   map[string]jobDef
	timers map[string]*time.Timer
	ver    map[string]uint64

	parser cron.Parser
	c      *cron.Cron
	crons  []cronDef

	inFlight int
	hist     []HistoryItem
}
