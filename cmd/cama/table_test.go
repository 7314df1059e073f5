package main

import (
	"strings"
	"testing"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]column{col("Station"), numCol("Depth (m)")},
		[][]string{
			{"A1", "5"},
			{"B5", "142.25"},
		},
	)

	for _, want := range []string{"Station", "Depth (m)", "A1", "B5", "5", "142.25"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered table missing %q:\n%s", want, out)
		}
	}

	// Right-aligned cells end at the same column regardless of width.
	shortEnd, longEnd := -1, -1
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "A1") {
			shortEnd = strings.Index(line, "5") + len("5")
		}
		if strings.Contains(line, "B5") {
			longEnd = strings.Index(line, "142.25") + len("142.25")
		}
	}
	if shortEnd == -1 || longEnd == -1 {
		t.Fatalf("rows not found in output:\n%s", out)
	}
	if shortEnd != longEnd {
		t.Fatalf("numeric column not right-aligned: %d vs %d\n%s", shortEnd, longEnd, out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{col("Key"), col("Value"), col("Note")},
		[][]string{{"only-key"}},
	)
	if !strings.Contains(out, "only-key") {
		t.Fatalf("cell missing:\n%s", out)
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("short row rendered nil cells:\n%s", out)
	}
}

func TestRenderTableEmptyColumnSet(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
