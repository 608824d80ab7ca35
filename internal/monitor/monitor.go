// Package monitor tails an agent session log, extracts claims from newly
// appended assistant messages, and verifies them one at a time through a
// serialized queue.
package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/dotsetgreg/claimcheck/internal/claims"
	"github.com/dotsetgreg/claimcheck/internal/logging"
	"github.com/dotsetgreg/claimcheck/internal/model"
)

// State is the monitor's lifecycle phase for one watched log file
type State string

const (
	StateIdle      State = "idle"
	StateWatching  State = "watching"
	StateParsing   State = "parsing"
	StateQueuing   State = "queuing"
	StateVerifying State = "verifying"
	StateStopped   State = "stopped"
)

// EventKind tags the monitor's event stream
type EventKind string

const (
	EventReady         EventKind = "ready"          // Initial read done, watching for growth
	EventClaimDetected EventKind = "claim-detected" // A new claim was seen in the log
	EventVerified      EventKind = "verified"       // A queued claim finished verification
	EventError         EventKind = "error"          // A non-fatal failure (queue overflow, watch error, verify error)
)

// Event is one occurrence on the monitor's event stream
type Event struct {
	Kind  EventKind
	Claim *model.DetectedClaim // Set for claim-detected and verified
	Err   error                // Set for error
}

// Verifier runs the verification step for one dequeued claim.
// The result payload is a *model.VerificationResult or a
// *model.DiffVerificationResult depending on how the monitor was wired.
type Verifier interface {
	Verify(ctx context.Context, claim model.ParsedClaim) (result interface{}, verified bool, err error)
}

// Stats is a point-in-time snapshot of monitor activity
type Stats struct {
	ClaimsDetected int `json:"claims_detected"`
	ClaimsVerified int `json:"claims_verified"`
	ClaimsPending  int `json:"claims_pending"`
}

const maxSourceLen = 200

// Monitor watches one log file. All mutable state is owned by the monitor
// and guarded by mu; the queue is drained by a single worker goroutine so
// at most one verification is ever in flight.
type Monitor struct {
	path     string
	cfg      model.MonitorConfig
	verifier Verifier

	watcher *fsnotify.Watcher
	events  chan Event
	queue   chan *model.DetectedClaim

	mu       sync.Mutex
	state    State
	offset   int64  // Bytes consumed up to the last complete line
	carry    string // Trailing partial line awaiting its newline
	seen     map[string]bool
	detected []*model.DetectedClaim
	verified int
	pending  int
	dirtyAt  time.Time
	dirty    bool

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a monitor for the given log file. The file does not have to
// exist yet; its parent directory does.
func New(path string, cfg model.MonitorConfig, verifier Verifier) (*Monitor, error) {
	if cfg.AutoVerify && verifier == nil {
		return nil, fmt.Errorf("auto-verify enabled without a verifier")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.MaxQueue <= 0 {
		cfg.MaxQueue = 256
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}

	return &Monitor{
		path:     abs,
		cfg:      cfg,
		verifier: verifier,
		events:   make(chan Event, cfg.MaxQueue),
		queue:    make(chan *model.DetectedClaim, cfg.MaxQueue),
		state:    StateIdle,
		seen:     make(map[string]bool),
		stopCh:   make(chan struct{}),
	}, nil
}

// Events returns the monitor's event stream. The channel is closed after
// Stop once both the watch loop and the worker have exited.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// State returns the current lifecycle phase
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns a snapshot of session counters
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		ClaimsDetected: len(m.detected),
		ClaimsVerified: m.verified,
		ClaimsPending:  m.pending,
	}
}

// DetectedClaims returns the claims seen so far, in detection order.
// Records are retained for the lifetime of the monitor.
func (m *Monitor) DetectedClaims() []*model.DetectedClaim {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.DetectedClaim, len(m.detected))
	copy(out, m.detected)
	return out
}

// Start reads the existing log content once (recording, not surfacing, any
// claims already present), then begins watching for appended content.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.bootstrap(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: fsnotify loses the file across rename/recreate
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(m.path), err)
	}
	m.watcher = watcher

	m.setState(StateWatching)

	m.wg.Add(2)
	go m.run(ctx)
	go m.work(ctx)

	m.emit(Event{Kind: EventReady})
	logging.L("monitor").Debugw("monitor started", "path", m.path)
	return nil
}

// Stop ends the watch, lets any in-flight verification finish, and drops
// the rest of the queue. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		if m.watcher != nil {
			m.watcher.Close()
		}
		m.wg.Wait()
		m.setState(StateStopped)
		close(m.events)
		logging.L("monitor").Debugw("monitor stopped", "stats", m.Stats())
	})
}

// bootstrap consumes pre-existing log content so old claims are never
// re-surfaced as new events
func (m *Monitor) bootstrap() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", m.path, err)
	}

	chunk, consumed := completeLines(string(data))
	m.mu.Lock()
	m.offset = int64(len(data))
	m.carry = string(data[consumed:])
	for _, msg := range parseTranscript(chunk) {
		if msg.role != "assistant" {
			continue
		}
		for _, claim := range extractClaims(msg.content) {
			m.seen[claim.Key()] = true
		}
	}
	m.mu.Unlock()
	return nil
}

// run is the watch loop: filesystem events mark the file dirty, a ticker
// flushes once the debounce window has settled
func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			m.mu.Lock()
			m.dirty = true
			m.dirtyAt = time.Now()
			m.mu.Unlock()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.emit(Event{Kind: EventError, Err: fmt.Errorf("watch: %w", err)})
		case <-ticker.C:
			m.mu.Lock()
			settled := m.dirty && time.Since(m.dirtyAt) >= m.cfg.Debounce
			if settled {
				m.dirty = false
			}
			m.mu.Unlock()
			if settled {
				if err := m.Scan(); err != nil {
					m.emit(Event{Kind: EventError, Err: err})
				}
			}
		}
	}
}

// Scan reads any bytes appended since the last scan and surfaces new
// claims. A shrunken file is treated as a rewrite: the tail position
// resets and the whole content is re-parsed (known claims stay deduped).
func (m *Monitor) Scan() error {
	info, err := os.Stat(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			m.mu.Lock()
			m.offset = 0
			m.carry = ""
			m.mu.Unlock()
			return nil
		}
		return fmt.Errorf("stat %s: %w", m.path, err)
	}

	m.mu.Lock()
	offset := m.offset
	carry := m.carry
	m.mu.Unlock()

	if info.Size() < offset {
		offset = 0
		carry = ""
		logging.L("monitor").Debugw("log truncated, resyncing", "path", m.path)
	}
	if info.Size() == offset {
		return nil
	}

	m.setState(StateParsing)
	defer m.setState(StateWatching)

	f, err := os.Open(m.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.path, err)
	}
	defer f.Close()

	buf := make([]byte, info.Size()-offset)
	n, err := f.ReadAt(buf, offset)
	if err != nil && n == 0 {
		return fmt.Errorf("read %s: %w", m.path, err)
	}

	appended := carry + string(buf[:n])
	chunk, consumed := completeLines(appended)

	// offset tracks bytes read from the file; carry holds the unparsed tail
	m.mu.Lock()
	m.offset = offset + int64(n)
	m.carry = appended[consumed:]
	m.mu.Unlock()

	m.ingest(chunk)
	return nil
}

// ingest parses a chunk of complete lines and surfaces newly-seen claims
func (m *Monitor) ingest(chunk string) {
	for _, msg := range parseTranscript(chunk) {
		if msg.role != "assistant" {
			continue
		}
		for _, claim := range extractClaims(msg.content) {
			m.surface(claim, msg.content)
		}
	}
}

// surface dedupes a claim by its (action, oldValue, newValue) key and,
// when new, emits claim-detected and optionally enqueues verification
func (m *Monitor) surface(claim model.ParsedClaim, source string) {
	m.mu.Lock()
	if m.seen[claim.Key()] {
		m.mu.Unlock()
		return
	}
	m.seen[claim.Key()] = true

	detected := &model.DetectedClaim{
		ID:        uuid.NewString(),
		Claim:     claim,
		Source:    truncate(source, maxSourceLen),
		Timestamp: time.Now(),
	}
	m.detected = append(m.detected, detected)
	m.mu.Unlock()

	m.emit(Event{Kind: EventClaimDetected, Claim: detected})

	if !m.cfg.AutoVerify {
		return
	}

	m.setState(StateQueuing)
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
	select {
	case m.queue <- detected:
	default:
		m.mu.Lock()
		m.pending--
		m.mu.Unlock()
		m.emit(Event{Kind: EventError, Err: fmt.Errorf("verification queue full, dropping claim %q", claim.Raw)})
	}
	m.setState(StateWatching)
}

// work drains the queue one claim at a time. Stop lets the in-flight
// verification finish and abandons the rest.
func (m *Monitor) work(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case detected := <-m.queue:
			m.setState(StateVerifying)
			result, ok, err := m.verifier.Verify(ctx, detected.Claim)
			m.setState(StateWatching)

			m.mu.Lock()
			m.pending--
			if err == nil {
				detected.Verified = &ok
				detected.Result = result
				m.verified++
			}
			m.mu.Unlock()

			if err != nil {
				m.emit(Event{Kind: EventError, Err: fmt.Errorf("verify %q: %w", detected.Claim.Raw, err)})
				continue
			}
			m.emit(Event{Kind: EventVerified, Claim: detected})
		}
	}
}

func (m *Monitor) setState(s State) {
	m.mu.Lock()
	if m.state != StateStopped {
		m.state = s
	}
	m.mu.Unlock()
}

// emit delivers an event without wedging shutdown on a slow consumer
func (m *Monitor) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.stopCh:
	}
}

// extractClaims runs text through the multi-claim parser, falling back to
// a single-claim parse of the whole message
func extractClaims(text string) []model.ParsedClaim {
	if found := claims.ParseAll(text); len(found) > 0 {
		return found
	}
	if claim, err := claims.Parse(text); err == nil {
		return []model.ParsedClaim{claim}
	}
	return nil
}

// completeLines returns the prefix of s ending at its last newline and the
// number of bytes that prefix covers
func completeLines(s string) (string, int) {
	idx := -1
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", 0
	}
	return s[:idx+1], idx + 1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
