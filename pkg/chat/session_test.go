package chat

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestSession() *Session {
	n := 0
	return NewSession(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("local-%d", n)
		}),
	)
}

func readySession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession()
	s.SetUser(User{ID: "42", Name: "Ada"})
	s.SetPersonas([]Persona{{ID: "1", Name: "Ana"}, {ID: "2", Name: "Bruno"}})
	req, ok := s.Select("1")
	if !ok {
		t.Fatal("Expected history request")
	}
	s.ApplyHistory(req.Generation, nil, nil)
	return s
}

func TestSession_InitialState(t *testing.T) {
	s := newTestSession()
	if s.State() != StateUnselected {
		t.Fatalf("Expected unselected, got %v", s.State())
	}
	if len(s.Personas()) != 0 || len(s.Messages()) != 0 {
		t.Fatal("Expected empty personas and messages")
	}
	if s.Typing() || s.LoadingHistory() {
		t.Fatal("Expected no activity")
	}
}

func TestSession_SetPersonasPrependsSupervisor(t *testing.T) {
	s := newTestSession()
	s.SetPersonas([]Persona{{ID: "1", Name: "Ana"}, {ID: "1", Name: "Dup"}, {ID: SupervisorID, Name: "Fake"}, {ID: "2", Name: "Bruno"}})

	got := s.Personas()
	want := []string{SupervisorID, "1", "2"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d personas, got %+v", len(want), got)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("Persona %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if got[0].Name != SupervisorName {
		t.Fatalf("Expected supervisor name, got %q", got[0].Name)
	}

	s.SetPersonas(nil)
	if p := s.Personas(); len(p) != 1 || !p[0].IsSupervisor() {
		t.Fatalf("Expected supervisor only, got %+v", p)
	}
}

func TestSession_SelectPersonaIssuesOneHistoryRequest(t *testing.T) {
	s := newTestSession()
	s.SetUser(User{ID: "42"})

	req, ok := s.Select("3")
	if !ok {
		t.Fatal("Expected history request")
	}
	if req.UserID != "42" || req.PersonaID != "3" || req.Ctx == nil {
		t.Fatalf("Unexpected request %+v", req)
	}
	if s.State() != StateLoadingHistory || !s.LoadingHistory() {
		t.Fatalf("Expected loading state, got %v", s.State())
	}

	history := []Message{
		{ID: "10", Role: RoleUser, Content: "a"},
		{ID: "11", Role: RoleAssistant, Content: "b"},
		{ID: "12", Role: RoleUser, Content: "c"},
	}
	if !s.ApplyHistory(req.Generation, history, nil) {
		t.Fatal("Expected history to apply")
	}
	if s.State() != StateReady {
		t.Fatalf("Expected ready, got %v", s.State())
	}
	got := s.Messages()
	for i := range history {
		if got[i].ID != history[i].ID {
			t.Fatalf("Expected server order, got %+v", got)
		}
	}
}

func TestSession_SelectSupervisorSkipsHistory(t *testing.T) {
	s := readySession(t)
	s.BeginSend("hello")

	if _, ok := s.Select(SupervisorID); ok {
		t.Fatal("Supervisor must not issue a history request")
	}
	if s.State() != StateReady {
		t.Fatalf("Expected ready, got %v", s.State())
	}
	if len(s.Messages()) != 0 {
		t.Fatalf("Expected empty transcript, got %d messages", len(s.Messages()))
	}
	if s.Typing() {
		t.Fatal("Typing must reset with the selection")
	}
}

func TestSession_SelectWithoutUser(t *testing.T) {
	s := newTestSession()
	if _, ok := s.Select("1"); ok {
		t.Fatal("Expected no request without a user")
	}
	if len(s.Messages()) != 0 {
		t.Fatal("Expected empty transcript")
	}

	req, ok := s.SetUser(User{ID: "42"})
	if !ok || req.PersonaID != "1" {
		t.Fatalf("Expected history request once the user is known, got %+v %v", req, ok)
	}
	if _, ok := s.SetUser(User{ID: "42", Name: "renamed"}); ok {
		t.Fatal("Same user id must not refetch")
	}
}

func TestSession_HistoryFailureClears(t *testing.T) {
	s := newTestSession()
	s.SetUser(User{ID: "42"})
	req, _ := s.Select("1")

	s.ApplyHistory(req.Generation, []Message{{ID: "x"}}, errors.New("boom"))
	if len(s.Messages()) != 0 {
		t.Fatal("Expected cleared transcript on failure")
	}
	if s.State() != StateReady {
		t.Fatalf("Expected ready after failure, got %v", s.State())
	}
}

func TestSession_StaleHistoryDropped(t *testing.T) {
	s := newTestSession()
	s.SetUser(User{ID: "42"})

	first, _ := s.Select("1")
	second, _ := s.Select("2")

	if first.Ctx.Err() == nil {
		t.Fatal("Superseded request context must be cancelled")
	}
	if second.Ctx.Err() != nil {
		t.Fatal("Current request context must be live")
	}

	if s.ApplyHistory(first.Generation, []Message{{ID: "old"}}, nil) {
		t.Fatal("Expected stale history to be dropped")
	}
	if !s.LoadingHistory() {
		t.Fatal("Stale result must not end loading of the current selection")
	}
	s.ApplyHistory(second.Generation, []Message{{ID: "new"}}, nil)
	if msgs := s.Messages(); len(msgs) != 1 || msgs[0].ID != "new" {
		t.Fatalf("Expected current history, got %+v", msgs)
	}
}

func TestSession_BlankSendIsNoop(t *testing.T) {
	s := readySession(t)
	before := s.Messages()
	gen := s.Generation()

	for _, text := range []string{"", " ", "\n\t "} {
		if _, ok := s.BeginSend(text); ok {
			t.Fatalf("BeginSend(%q) should be a no-op", text)
		}
	}
	if len(s.Messages()) != len(before) || s.Typing() || s.Generation() != gen {
		t.Fatal("Blank send changed state")
	}
}

func TestSession_SendWithoutSelection(t *testing.T) {
	s := newTestSession()
	s.SetUser(User{ID: "42"})
	if _, ok := s.BeginSend("hi"); ok {
		t.Fatal("Send without persona should be a no-op")
	}
}

func TestSession_SendSuccessAppendsTwo(t *testing.T) {
	s := readySession(t)

	req, ok := s.BeginSend("  Hello  ")
	if !ok {
		t.Fatal("Expected send request")
	}
	if req.Content != "  Hello  " || req.Supervisor() {
		t.Fatalf("Unexpected request %+v", req)
	}
	msgs := s.Messages()
	if len(msgs) != 1 || !msgs[0].Pending || msgs[0].Role != RoleUser || !msgs[0].Timestamp.Equal(testNow) {
		t.Fatalf("Expected pending optimistic message, got %+v", msgs)
	}
	if !s.Typing() {
		t.Fatal("Expected typing while in flight")
	}

	s.ApplyReply(req, Message{ID: "99", Content: "Hi!", Timestamp: testNow.Add(time.Second)}, nil)

	msgs = s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Pending {
		t.Fatal("Optimistic message should no longer be pending")
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != "Hi!" || msgs[1].ID != "99" {
		t.Fatalf("Unexpected reply %+v", msgs[1])
	}
	if s.Typing() {
		t.Fatal("Typing should clear after the reply")
	}
}

func TestSession_SendFailureAppendsSynthetic(t *testing.T) {
	s := readySession(t)

	req, _ := s.BeginSend("Hello")
	s.ApplyReply(req, Message{}, errors.New("500"))

	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "Hello" || msgs[0].Pending {
		t.Fatalf("Optimistic message must stay without pending marker, got %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || msgs[1].Content != FailureReply || msgs[1].ID == "" {
		t.Fatalf("Unexpected synthetic reply %+v", msgs[1])
	}
	if s.Typing() {
		t.Fatal("Typing should clear after failure")
	}
}

func TestSession_ConcurrentSendsKeepTyping(t *testing.T) {
	s := readySession(t)

	first, _ := s.BeginSend("one")
	second, _ := s.BeginSend("two")

	s.ApplyReply(second, Message{Content: "re: two"}, nil)
	if !s.Typing() {
		t.Fatal("Expected typing while the first send is in flight")
	}
	s.ApplyReply(first, Message{Content: "re: one"}, nil)
	if s.Typing() {
		t.Fatal("Expected typing cleared once all sends finish")
	}
	if len(s.Messages()) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(s.Messages()))
	}
}

func TestSession_StaleReplyDropped(t *testing.T) {
	s := readySession(t)
	req, _ := s.BeginSend("hello")

	s.Select("2")
	if s.ApplyReply(req, Message{Content: "late"}, nil) {
		t.Fatal("Expected stale reply to be dropped")
	}
	if len(s.Messages()) != 0 {
		t.Fatalf("Stale reply leaked into transcript: %+v", s.Messages())
	}
}

func TestSession_ReloadDiscardsInFlightReply(t *testing.T) {
	s := readySession(t)
	send, _ := s.BeginSend("hello")

	reload, ok := s.Reload()
	if !ok {
		t.Fatal("Expected history request on reload")
	}
	if s.Typing() {
		t.Fatal("Expected typing to clear on reload")
	}
	if send.Ctx.Err() == nil {
		t.Error("Expected the send context to be cancelled")
	}
	if s.ApplyReply(send, Message{Content: "late"}, nil) {
		t.Fatal("Expected the pre-reload reply to be dropped")
	}

	history := []Message{
		{ID: "1", Role: RoleUser, Content: "hello", Timestamp: testNow},
		{ID: "2", Role: RoleAssistant, Content: "late", Timestamp: testNow},
	}
	if !s.ApplyHistory(reload.Generation, history, nil) {
		t.Fatal("Expected reload history to apply")
	}
	if msgs := s.Messages(); len(msgs) != 2 || msgs[1].Content != "late" {
		t.Fatalf("Expected refetched history, got %+v", msgs)
	}
}

func TestSession_SupervisorSend(t *testing.T) {
	s := newTestSession()
	s.SetUser(User{ID: "42"})
	s.Select(SupervisorID)

	req, ok := s.BeginSend("route me")
	if !ok || !req.Supervisor() {
		t.Fatalf("Expected supervisor send, got %+v", req)
	}
	s.ApplyReply(req, Message{Content: "routed"}, nil)
	if last, ok := s.LastAssistant(); !ok || last.Content != "routed" {
		t.Fatalf("Unexpected last assistant %+v", last)
	}
}

func TestSession_Reset(t *testing.T) {
	s := readySession(t)
	ctx := s.Context()
	s.BeginSend("hi")

	s.Reset()

	if ctx.Err() == nil {
		t.Fatal("Reset must cancel outstanding requests")
	}
	if s.User().ID != "" || len(s.Personas()) != 0 || len(s.Messages()) != 0 {
		t.Fatal("Reset must clear user, personas and messages")
	}
	if s.State() != StateUnselected || s.Typing() {
		t.Fatalf("Expected idle unselected state, got %v", s.State())
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateUnselected:     "unselected",
		StateLoadingHistory: "loading",
		StateReady:          "ready",
		State(9):            "unknown",
	}
	for st, want := range tests {
		if st.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", st, st.String(), want)
		}
	}
}
