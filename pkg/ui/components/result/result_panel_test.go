package result

import (
	"fmt"
	"strings"
	"testing"

	"twinchat/pkg/ui/components/testutils"
)

func TestResultPanel_ShowAndClose(t *testing.T) {
	rp := NewResultPanel()
	rp.SetSize(80, 24)
	rp.Show("Help", "Commands:\n  /help      Show help")

	if !rp.IsVisible() || rp.Title() != "Help" {
		t.Fatal("Expected panel to be visible with title")
	}
	view := rp.View()
	if !strings.Contains(view, "/help      Show help") {
		t.Errorf("Expected aligned content to be kept, got %q", view)
	}

	cmd := rp.Update(testutils.TestKeyEsc)
	if cmd == nil {
		t.Fatal("Expected close command")
	}
	if _, ok := cmd().(ResultPanelCloseMsg); !ok {
		t.Fatalf("Expected ResultPanelCloseMsg, got %T", cmd())
	}
	if rp.IsVisible() {
		t.Fatal("Expected panel hidden")
	}
	if rp.View() != "" {
		t.Fatal("Expected empty view when hidden")
	}
}

func TestResultPanel_WrapsLongLines(t *testing.T) {
	rp := NewResultPanel()
	rp.SetSize(40, 24)
	rp.Show("Export", strings.Repeat("word ", 30))

	for _, l := range rp.lines {
		if len(l) > 30 {
			t.Fatalf("Expected wrapped lines within 30 columns, got %q", l)
		}
	}
}

func TestResultPanel_Scroll(t *testing.T) {
	rp := NewResultPanel()
	rp.SetSize(80, 20)
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "line %d\n", i)
	}
	rp.Show("Long", sb.String())

	rp.Update(testutils.TestKeyDown)
	if rp.scrollY != 1 {
		t.Fatalf("Expected scrollY=1, got %d", rp.scrollY)
	}
	rp.Update(testutils.TestKeyUp)
	rp.Update(testutils.TestKeyUp)
	if rp.scrollY != 0 {
		t.Fatalf("Expected scrollY clamped at 0, got %d", rp.scrollY)
	}

	for i := 0; i < 10; i++ {
		rp.Update(testutils.TestKeyPgDown)
	}
	want := len(rp.lines) - rp.visibleLines()
	if rp.scrollY != want {
		t.Fatalf("Expected scrollY=%d, got %d", want, rp.scrollY)
	}
	if !strings.Contains(rp.View(), "line 39") {
		t.Fatal("Expected last line visible at the bottom")
	}
}
