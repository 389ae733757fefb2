package codec

import (
	"testing"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldNames(n *b2mml.Node) []string {
	names := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		names[i] = f.Name
	}
	return names
}

func TestValueType(t *testing.T) {
	n := ValueType(Value{Text: "25", DataType: "Measure", UnitOfMeasure: "seconds", Key: "k"})
	assert.Equal(t, []string{"ValueString", "DataType", "UnitOfMeasure", "Key"}, fieldNames(n))
	assert.Equal(t, "25", n.Text("ValueString"))
	assert.Equal(t, "Measure", n.Text("DataType"))
	assert.Equal(t, "seconds", n.Text("UnitOfMeasure"))
	assert.Equal(t, "k", n.Text("Key"))
}

func TestValueType_DataInterpretation(t *testing.T) {
	n := ValueType(Value{Text: "10", DataInterpretation: DataInterpretationConstant})
	assert.Equal(t, []string{"ValueString", "DataInterpretation", "DataType", "UnitOfMeasure", "Key"}, fieldNames(n))
	assert.Equal(t, "Constant", n.Text("DataInterpretation"))
}

func TestAmount(t *testing.T) {
	n := Amount(Value{Text: "1", UnitOfMeasure: "kg"})
	assert.Equal(t, "1", n.Text("QuantityString"))
	_, hasValueString := n.Get("ValueString")
	assert.False(t, hasValueString)

	pruned := b2mml.Prune(n)
	require.NotNil(t, pruned)
	assert.Equal(t, []string{"QuantityString", "UnitOfMeasure"}, fieldNames(pruned))
}

func TestFromSpecAndUser(t *testing.T) {
	assert.Equal(t, Value{}, FromSpec(nil))

	spec := &schema.ValueSpec{ValueString: schema.ScalarOf("3"), DataType: "float", UnitOfMeasure: "l"}
	assert.Equal(t, Value{Text: "3", DataType: "float", UnitOfMeasure: "l"}, FromSpec(spec))

	user := schema.UserValue{Text: schema.ScalarOf("7"), UnitOfMeasure: "bar"}
	assert.Equal(t, Value{Text: "7", UnitOfMeasure: "bar"}, FromUser(user))
}
