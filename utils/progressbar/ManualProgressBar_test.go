package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewManualProgressBarTo(&out, 10, 4)

	for i := 0; i < 6; i++ {
		p.Increment()
	}
	if p.Progress() != 1 {
		t.Errorf("progress should stop at 1, have %v", p.Progress())
	}

	p.SetStatus("best: %v", -12)
	p.Display()
	p.Close()

	s := out.String()
	if !strings.Contains(s, "100.00%") {
		t.Errorf("display should show 100%%, have %q", s)
	}
	if !strings.Contains(s, "best: -12") {
		t.Errorf("display should show the status, have %q", s)
	}
	if n := strings.Count(s, "█"); n != 10 {
		t.Errorf("want 10 filled cells, have %d", n)
	}
}

func TestManualProgressBarPartial(t *testing.T) {
	p := NewManualProgressBarTo(&bytes.Buffer{}, 8, 4)
	p.Increment()

	if p.Progress() != 0.25 {
		t.Errorf("progress: want 0.25, have %v", p.Progress())
	}
	if n := strings.Count(p.String(), "█"); n != 2 {
		t.Errorf("want 2 filled cells, have %d", n)
	}
}
