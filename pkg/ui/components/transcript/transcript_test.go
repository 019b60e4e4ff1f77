package transcript

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"twinchat/pkg/chat"
	"twinchat/pkg/ui/components/testutils"

	tea "charm.land/bubbletea/v2"
)

func plainLines(tr *Transcript) []string {
	out := make([]string, 0, len(tr.Lines()))
	for _, l := range tr.Lines() {
		out = append(out, ansi.Strip(l))
	}
	return out
}

func joined(tr *Transcript) string {
	return strings.Join(plainLines(tr), "\n")
}

func manyMessages(n int) []chat.Message {
	msgs := make([]chat.Message, 0, n)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		msgs = append(msgs, chat.Message{
			ID:        fmt.Sprintf("m%d", i),
			Role:      role,
			Content:   fmt.Sprintf("message number %d", i),
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
		})
	}
	return msgs
}

func TestTranscript_EmptyText(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 10)
	tr.SetEmptyText("Say hello to Ana")

	if !strings.Contains(joined(tr), "Say hello to Ana") {
		t.Fatalf("Expected placeholder, got %q", joined(tr))
	}
}

func TestTranscript_RendersLabelsAndContent(t *testing.T) {
	tr := New("notty")
	tr.SetSize(60, 20)
	tr.SetAssistantName("Ana")
	tr.SetMessages([]chat.Message{
		{ID: "1", Role: chat.RoleUser, Content: "hi there"},
		{ID: "2", Role: chat.RoleAssistant, Content: "hello back"},
	})

	out := joined(tr)
	for _, want := range []string{"You", "hi there", "Ana", "hello back"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in transcript, got %q", want, out)
		}
	}
	if strings.Index(out, "hi there") > strings.Index(out, "hello back") {
		t.Error("Expected messages in order")
	}
}

func TestTranscript_PendingMarker(t *testing.T) {
	tr := New("notty")
	tr.SetSize(60, 10)
	tr.SetMessages([]chat.Message{{ID: "local", Role: chat.RoleUser, Content: "on its way", Pending: true}})

	if !strings.Contains(joined(tr), "sending...") {
		t.Fatalf("Expected pending marker, got %q", joined(tr))
	}
}

func TestTranscript_TypingIndicator(t *testing.T) {
	tr := New("notty")
	tr.SetSize(60, 10)
	tr.SetMessages([]chat.Message{{ID: "1", Role: chat.RoleUser, Content: "question"}})
	tr.SetTyping("Ana is typing...")

	lines := plainLines(tr)
	if got := lines[len(lines)-1]; !strings.Contains(got, "Ana is typing...") {
		t.Fatalf("Expected typing line last, got %q", got)
	}

	tr.SetTyping("")
	if strings.Contains(joined(tr), "typing") {
		t.Fatal("Expected typing line to be removed")
	}
}

func TestTranscript_WrapsUserContent(t *testing.T) {
	tr := New("notty")
	tr.SetSize(22, 10)
	tr.SetMessages([]chat.Message{{ID: "1", Role: chat.RoleUser, Content: "one two three four five six seven"}})

	for _, l := range plainLines(tr) {
		if ansi.StringWidth(l) > 20 {
			t.Fatalf("Expected lines within 20 columns, got %q", l)
		}
	}
}

func TestTranscript_FollowsBottom(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 8)
	tr.SetMessages(manyMessages(20))

	if !tr.AtBottom() {
		t.Fatal("Expected transcript to follow new messages")
	}
	if tr.scrollY != tr.maxScroll() {
		t.Fatalf("Expected scrollY=%d, got %d", tr.maxScroll(), tr.scrollY)
	}
	if !strings.Contains(ansi.Strip(tr.View()), "message number 19") {
		t.Fatal("Expected last message to be visible")
	}
}

func TestTranscript_ScrollUpStopsFollowing(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 8)
	tr.SetMessages(manyMessages(20))

	if !tr.Update(testutils.TestKeyPgUp) {
		t.Fatal("Expected PgUp to be handled")
	}
	if tr.AtBottom() {
		t.Fatal("Expected scroll up to stop following")
	}
	before := tr.scrollY

	tr.SetMessages(manyMessages(22))
	if tr.scrollY != before {
		t.Fatalf("Expected scroll position to stay at %d, got %d", before, tr.scrollY)
	}

	tr.Update(tea.KeyPressMsg(tea.Key{Code: tea.KeyEnd, Mod: tea.ModCtrl}))
	if !tr.AtBottom() || tr.scrollY != tr.maxScroll() {
		t.Fatal("Expected ctrl+end to jump back to the bottom")
	}
}

func TestTranscript_ScrollClamps(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 8)
	tr.SetMessages(manyMessages(3))

	for i := 0; i < 5; i++ {
		tr.Update(testutils.TestKeyPgUp)
	}
	if tr.scrollY != 0 {
		t.Fatalf("Expected scrollY=0, got %d", tr.scrollY)
	}
	for i := 0; i < 5; i++ {
		tr.Update(testutils.TestKeyPgDown)
	}
	if tr.scrollY != tr.maxScroll() {
		t.Fatalf("Expected scrollY=max, got %d", tr.scrollY)
	}
}

func TestTranscript_IgnoresOtherKeys(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 8)
	if tr.Update(testutils.NewTextKeyPressMsg("a")) {
		t.Fatal("Expected text keys to pass through")
	}
}

func TestTranscript_ViewHeight(t *testing.T) {
	tr := New("notty")
	tr.SetSize(40, 8)
	tr.SetMessages(manyMessages(20))

	if got := strings.Count(tr.View(), "\n") + 1; got != 8 {
		t.Fatalf("Expected 8 rows, got %d", got)
	}
}

func TestMarkdownRenderer_FallbackOnBadStyle(t *testing.T) {
	r := newMarkdownRenderer("no-such-style")
	lines := r.render("plain words", 20)
	if len(lines) == 0 || !strings.Contains(strings.Join(lines, " "), "plain words") {
		t.Fatalf("Expected plain fallback, got %v", lines)
	}
}

func TestTranscript_BannerWhenEmpty(t *testing.T) {
	tr := New("notty")
	tr.SetSize(60, 10)
	tr.SetEmptyText("nothing yet")
	tr.SetBanner("line one\nline two")

	if got := plainLines(tr); len(got) != 2 || got[0] != "line one" {
		t.Fatalf("Expected banner lines, got %v", got)
	}

	tr.SetMessages([]chat.Message{{ID: "1", Role: chat.RoleUser, Content: "hi"}})
	if strings.Contains(joined(tr), "line one") {
		t.Fatal("Expected banner to hide once messages exist")
	}
}
