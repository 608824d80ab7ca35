package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dotsetgreg/claimcheck/internal/model"
)

type fakeVerifier struct {
	mu    sync.Mutex
	calls []model.ParsedClaim
}

func (f *fakeVerifier) Verify(_ context.Context, claim model.ParsedClaim) (interface{}, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, claim)
	return &model.VerificationResult{Claim: claim, Verified: true}, true, nil
}

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

// drainEvents collects whatever is buffered on the event channel
func drainEvents(m *Monitor) []Event {
	var out []Event
	for {
		select {
		case ev := <-m.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func countKind(events []Event, kind EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func TestParseTranscript(t *testing.T) {
	chunk := `{"role":"assistant","content":"I renamed Foo to Bar"}
{"role":"user","content":"thanks"}
{"role":"assistant","content":[{"type":"text","text":"I removed baz"},{"type":"tool_use","text":"ignored"}]}
{"message":{"role":"assistant","content":"I updated qux to quux"}}
plain text line
`
	msgs := parseTranscript(chunk)
	if len(msgs) != 5 {
		t.Fatalf("Expected 5 messages, got %d: %+v", len(msgs), msgs)
	}

	want := []message{
		{role: "assistant", content: "I renamed Foo to Bar"},
		{role: "user", content: "thanks"},
		{role: "assistant", content: "I removed baz"},
		{role: "assistant", content: "I updated qux to quux"},
		{role: "assistant", content: "plain text line"},
	}
	for i, w := range want {
		if msgs[i] != w {
			t.Errorf("msgs[%d] = %+v, want %+v", i, msgs[i], w)
		}
	}
}

func TestParseTranscript_SkipsEmptyAndContentless(t *testing.T) {
	chunk := "\n\n{\"role\":\"assistant\"}\n"
	msgs := parseTranscript(chunk)
	// The contentless JSON object falls back to plain-text treatment
	if len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(msgs))
	}
}

func TestCompleteLines(t *testing.T) {
	tests := []struct {
		in           string
		wantChunk    string
		wantConsumed int
	}{
		{"", "", 0},
		{"partial", "", 0},
		{"one\n", "one\n", 4},
		{"one\ntwo", "one\n", 4},
		{"one\ntwo\n", "one\ntwo\n", 8},
	}
	for _, tc := range tests {
		chunk, consumed := completeLines(tc.in)
		if chunk != tc.wantChunk || consumed != tc.wantConsumed {
			t.Errorf("completeLines(%q) = (%q, %d), want (%q, %d)", tc.in, chunk, consumed, tc.wantChunk, tc.wantConsumed)
		}
	}
}

func TestMonitor_ExistingClaimsNotResurfaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, `{"role":"assistant","content":"I renamed Foo to Bar"}`+"\n")

	m, err := New(path, model.MonitorConfig{AutoVerify: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	// Same claim appended again is old news; a different claim is surfaced
	appendLog(t, path, `{"role":"assistant","content":"I renamed Foo to Bar"}`+"\n")
	appendLog(t, path, `{"role":"assistant","content":"I removed LegacyAuth"}`+"\n")
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	events := drainEvents(m)
	if got := countKind(events, EventClaimDetected); got != 1 {
		t.Fatalf("Expected 1 claim-detected event, got %d: %+v", got, events)
	}
	if events[0].Claim.Claim.OldValue != "LegacyAuth" {
		t.Errorf("Surfaced the wrong claim: %+v", events[0].Claim.Claim)
	}

	stats := m.Stats()
	if stats.ClaimsDetected != 1 || stats.ClaimsPending != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestMonitor_DuplicateClaimOneEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, "")

	m, err := New(path, model.MonitorConfig{AutoVerify: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	line := `{"role":"assistant","content":"I renamed UserService to AuthService"}` + "\n"
	appendLog(t, path, line)
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	appendLog(t, path, line)
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	events := drainEvents(m)
	if got := countKind(events, EventClaimDetected); got != 1 {
		t.Errorf("Expected exactly 1 claim-detected event for duplicate text, got %d", got)
	}
}

func TestMonitor_UserMessagesIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, "")

	m, err := New(path, model.MonitorConfig{AutoVerify: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	appendLog(t, path, `{"role":"user","content":"I renamed Foo to Bar"}`+"\n")
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if events := drainEvents(m); countKind(events, EventClaimDetected) != 0 {
		t.Errorf("User messages must not produce claims: %+v", events)
	}
}

func TestMonitor_PartialLineHeldUntilComplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, "")

	m, err := New(path, model.MonitorConfig{AutoVerify: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	half := `{"role":"assistant","content":"I removed Lega`
	appendLog(t, path, half)
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if events := drainEvents(m); len(events) != 0 {
		t.Fatalf("Partial line must not be parsed yet: %+v", events)
	}

	appendLog(t, path, `cyAuth"}`+"\n")
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	events := drainEvents(m)
	if got := countKind(events, EventClaimDetected); got != 1 {
		t.Fatalf("Expected the completed line to surface 1 claim, got %d", got)
	}
	if events[0].Claim.Claim.OldValue != "LegacyAuth" {
		t.Errorf("Reassembled claim is wrong: %+v", events[0].Claim.Claim)
	}
}

func TestMonitor_TruncationResync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, `{"role":"assistant","content":"I renamed Foo to Bar"}`+"\n")

	m, err := New(path, model.MonitorConfig{AutoVerify: false}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := m.bootstrap(); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	// Rewrite the file shorter: resync, not an error. The old claim stays
	// deduped, the new one surfaces.
	writeLog(t, path, `{"role":"assistant","content":"I removed Baz"}`+"\n")
	if err := m.Scan(); err != nil {
		t.Fatalf("Scan after truncation failed: %v", err)
	}

	events := drainEvents(m)
	if got := countKind(events, EventClaimDetected); got != 1 {
		t.Fatalf("Expected 1 claim after resync, got %d: %+v", got, events)
	}
	if events[0].Claim.Claim.OldValue != "Baz" {
		t.Errorf("Wrong claim after resync: %+v", events[0].Claim.Claim)
	}
}

func TestMonitor_EndToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	writeLog(t, path, "")

	verifier := &fakeVerifier{}
	cfg := model.MonitorConfig{AutoVerify: true, Debounce: 20 * time.Millisecond, MaxQueue: 16}
	m, err := New(path, cfg, verifier)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer m.Stop()

	waitFor := func(kind EventKind) Event {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			select {
			case ev := <-m.Events():
				if ev.Kind == EventError {
					t.Fatalf("Unexpected error event: %v", ev.Err)
				}
				if ev.Kind == kind {
					return ev
				}
			case <-deadline:
				t.Fatalf("Timed out waiting for %s event", kind)
			}
		}
	}

	waitFor(EventReady)

	appendLog(t, path, `{"role":"assistant","content":"I renamed UserService to AuthService"}`+"\n")

	detected := waitFor(EventClaimDetected)
	if detected.Claim.Claim.Action != model.ActionRename || detected.Claim.ID == "" {
		t.Errorf("Unexpected detected claim: %+v", detected.Claim)
	}

	verified := waitFor(EventVerified)
	if verified.Claim.Verified == nil || !*verified.Claim.Verified {
		t.Errorf("Expected verified flag set on the record: %+v", verified.Claim)
	}
	if verified.Claim.Result == nil {
		t.Error("Expected verification result attached to the record")
	}

	stats := m.Stats()
	if stats.ClaimsDetected != 1 || stats.ClaimsVerified != 1 || stats.ClaimsPending != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}
