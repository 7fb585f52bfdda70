package pipeline

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"recruitflow/internal/cv"
	"recruitflow/internal/notify"
	"recruitflow/internal/storage"
)

const (
	defaultWorkers         = 4
	defaultAnalyzerTimeout = 30 * time.Second
	defaultRetries         = 3
)

// Options tunes the engine. Zero values fall back to defaults.
type Options struct {
	// Workers bounds the ingestion worker pool.
	Workers int
	// AnalyzerTimeout caps a single document analysis call.
	AnalyzerTimeout time.Duration
	// TransitionRetries bounds retries of optimistic-write conflicts.
	TransitionRetries uint
}

// Engine is the recruitment pipeline core. It coordinates batch resume
// ingestion, candidate lifecycle transitions, interview scheduling,
// notes and analytics over an optimistically versioned store.
type Engine struct {
	store      storage.Store
	analyzer   cv.DocumentAnalyzer
	dispatcher notify.Dispatcher
	log        logrus.FieldLogger

	workers         int
	analyzerTimeout time.Duration
	retries         uint

	// serializes create-or-update per (job, email) during ingestion
	dedup keyedMutex

	now func() time.Time
}

func NewEngine(store storage.Store, analyzer cv.DocumentAnalyzer, dispatcher notify.Dispatcher, log logrus.FieldLogger, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.AnalyzerTimeout <= 0 {
		opts.AnalyzerTimeout = defaultAnalyzerTimeout
	}
	if opts.TransitionRetries == 0 {
		opts.TransitionRetries = defaultRetries
	}
	if dispatcher == nil {
		dispatcher = notify.NopDispatcher{}
	}
	return &Engine{
		store:           store,
		analyzer:        analyzer,
		dispatcher:      dispatcher,
		log:             log,
		workers:         opts.Workers,
		analyzerTimeout: opts.AnalyzerTimeout,
		retries:         opts.TransitionRetries,
		dedup:           keyedMutex{locks: make(map[string]*dedupLock)},
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type dedupLock struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex hands out one mutex per key so concurrent ingestion of the
// same (job, email) serializes while distinct candidates proceed without
// contention. Entries are reference counted and dropped when idle.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*dedupLock
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &dedupLock{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
