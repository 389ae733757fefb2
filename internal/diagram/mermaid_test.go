package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMermaidLinear(t *testing.T) {
	output := RenderMermaid(Build("Dosing", linearProcedure(), nil))

	assert.Contains(t, output, "graph TD\n")
	assert.Contains(t, output, "%% Dosing")

	// Steps are boxes, transitions diamonds, Begin/End circles.
	assert.Contains(t, output, `S1["S1: A"]`)
	assert.Contains(t, output, `T1{"T1: Tank.Level > 10"}`)
	assert.Contains(t, output, `__begin__(("Begin"))`)
	assert.Contains(t, output, `__end__(("End"))`)

	assert.Contains(t, output, "__begin__ --> S1")
	assert.Contains(t, output, "S1 --> T1")
	assert.Contains(t, output, "S3 --> __end__")

	assert.Contains(t, output, "classDef completed")
	assert.Contains(t, output, "classDef blocked")
	assert.NotContains(t, output, "class S1 ")
}

func TestRenderMermaidOverlay(t *testing.T) {
	ov := &Overlay{
		Completed:   []string{"A"},
		Transitions: map[string]bool{"T1": true, "T2": false},
	}
	output := RenderMermaid(Build("Dosing", linearProcedure(), ov))

	assert.Contains(t, output, "class S1 completed")
	assert.Contains(t, output, "class S2 pending")
	assert.Contains(t, output, "class T1 satisfied")
	assert.Contains(t, output, "class T2 blocked")
}

func TestRenderMermaidEscaping(t *testing.T) {
	p := linearProcedure()
	p.Transitions[0].Condition = `Mode.Name == "auto" | manual`
	output := RenderMermaid(Build("Dosing", p, nil))

	assert.Contains(t, output, `T1{"T1: Mode.Name == #quot;auto#quot; #124; manual"}`)
}

func TestMermaidSafeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"S1", "S1"},
		{"a.b-c d:e", "a_b_c_d_e"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mermaidSafeID(tt.in))
	}
}
