package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderASCIILinear(t *testing.T) {
	output := RenderASCII(Build("Dosing", linearProcedure(), nil))

	assert.Contains(t, output, "=== Dosing ===")

	// Box-drawing characters for steps.
	assert.Contains(t, output, "┌")
	assert.Contains(t, output, "┘")
	assert.Contains(t, output, "│")

	assert.Contains(t, output, "│ S1: A │")
	assert.Contains(t, output, "< T1: Tank.Level > 10 >")
	assert.Contains(t, output, "Begin")
	assert.Contains(t, output, "End")
	assert.Contains(t, output, "▼")

	assert.Contains(t, output, "Links:")
	assert.Contains(t, output, "  Begin ─→ S1\n")
	assert.Contains(t, output, "  S3 ─→ End\n")
	assert.NotContains(t, output, "[OK]")
}

func TestRenderASCIIWithOverlay(t *testing.T) {
	ov := &Overlay{
		Completed:   []string{"A"},
		Transitions: map[string]bool{"T1": true, "T2": false},
	}
	output := RenderASCII(Build("Dosing", linearProcedure(), ov))

	assert.Contains(t, output, "[OK]")
	assert.Contains(t, output, "[PEND]")
	assert.Contains(t, output, "[GO]")
	assert.Contains(t, output, "[HOLD]")
}

func TestRenderASCIIParallelRow(t *testing.T) {
	output := RenderASCII(Build("Par", parallelProcedure(), nil))

	// Both steps share one level and are drawn on the same line.
	var row string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "S1: A") {
			row = line
		}
	}
	assert.Contains(t, row, "S2: B")
}

func TestRenderASCIIEmptyTitle(t *testing.T) {
	output := RenderASCII(&DiagramModel{Levels: [][]string{{"x"}}})
	assert.NotContains(t, output, "===")
}
