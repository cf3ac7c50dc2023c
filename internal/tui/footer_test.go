package tui

import (
	"strings"
	"testing"
)

func TestRenderFooterFormats(t *testing.T) {
	m, _ := newTestModel(t, nil)
	typeText(m, "ab x")
	m.hasLast = true
	m.lastWPM = 72.4
	m.lastAcc = 0.978
	m.allWPM = 68.1
	m.allAcc = 0.969

	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Progress 60%", "Mistakes 1", "Last 72.4 WPM", "97.8%", "All-time 68.1 WPM", "96.9%"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	m, _ := newTestModel(t, nil)
	out := m.renderFooter()
	if strings.Contains(out, "Last") {
		t.Fatalf("unexpected last-session segment: %s", out)
	}
	if !strings.Contains(out, "Progress 0%") {
		t.Fatalf("unexpected footer: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
