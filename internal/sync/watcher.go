package sync

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	gosync "sync"
	"time"
)

// State is the connectivity state.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Status is the watcher's externally visible state: connectivity,
// queued-action backlog, and the outcome of the last replay.
type Status struct {
	State      State      `json:"state"`
	Pending    int        `json:"pending"`
	LastSync   *time.Time `json:"last_sync,omitempty"`
	LastResult *Result    `json:"last_result,omitempty"`
}

// StatusCallback is invoked whenever connectivity flips or a replay
// completes.
type StatusCallback func(Status)

// Prober reports whether the remote side is reachable right now.
type Prober func(ctx context.Context) error

// DBProber probes a relational backend with a ping.
func DBProber(db *sql.DB) Prober {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}

// HTTPProber probes a connectivity-check URL with a HEAD request.
func HTTPProber(url string, client *http.Client) Prober {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

// AlwaysOnline is the prober for deployments with nothing to probe.
func AlwaysOnline() Prober {
	return func(context.Context) error { return nil }
}

// Watcher bridges connectivity signals into reconciliation. The
// offline-to-online transition fires an immediate replay; going offline
// only flips the reported status. On Start while already online it
// replays proactively, covering actions queued in a previous offline
// session before a restart.
type Watcher struct {
	mu       gosync.RWMutex
	prober   Prober
	interval time.Duration
	rec      *Reconciler
	queue    *Queue
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWatcher(prober Prober, rec *Reconciler, queue *Queue, interval time.Duration, callback StatusCallback, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Watcher{
		prober:   prober,
		interval: interval,
		rec:      rec,
		queue:    queue,
		status:   Status{State: StateOffline},
		callback: callback,
		logger:   logger,
	}
}

// Start begins the probe loop. An initial probe runs before the first
// tick so a freshly started server settles its state immediately.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.mu.Unlock()

	go func() {
		defer close(w.done)

		w.check(ctx)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.check(ctx)
			}
		}
	}()
}

// Stop halts the probe loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.RLock()
	cancel := w.cancel
	done := w.done
	w.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Status returns the current status with a fresh backlog count.
func (w *Watcher) Status() Status {
	w.mu.RLock()
	s := w.status
	w.mu.RUnlock()
	s.Pending = w.queue.Len()
	return s
}

// Online reports current connectivity.
func (w *Watcher) Online() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status.State == StateOnline
}

func (w *Watcher) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, w.interval)
	err := w.prober(probeCtx)
	cancel()

	w.mu.Lock()
	prev := w.status.State
	if err != nil {
		w.status.State = StateOffline
	} else {
		w.status.State = StateOnline
	}
	next := w.status.State
	w.mu.Unlock()

	switch {
	case next == StateOnline && prev != StateOnline:
		if prev == StateOffline {
			w.logger.Info("connectivity restored")
		}
		w.reconcile()
	case next == StateOffline && prev == StateOnline:
		w.logger.Warn("connectivity lost", "pending", w.queue.Len())
		w.notify()
	default:
		// Steady state; still surface backlog changes.
		w.notify()
	}
}

func (w *Watcher) reconcile() {
	res, err := w.rec.Run()
	if err != nil {
		w.logger.Error("reconcile failed", "error", err)
		w.notify()
		return
	}

	w.mu.Lock()
	if res.Processed > 0 || res.Failed > 0 {
		now := time.Now().UTC()
		w.status.LastSync = &now
		w.status.LastResult = &res
	}
	w.mu.Unlock()
	w.notify()
}

func (w *Watcher) notify() {
	if w.callback == nil {
		return
	}
	w.callback(w.Status())
}
