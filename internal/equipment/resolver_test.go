package equipment

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/rendis/batchml/internal/codec"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeItem(t *testing.T, raw string) *schema.WorkspaceItem {
	t.Helper()
	var it schema.WorkspaceItem
	require.NoError(t, json.Unmarshal([]byte(raw), &it))
	return &it
}

const mtpItem = `{
	"id": "S1",
	"type": "process",
	"processElementParameter": [
		{"id": "Duration_Stirring", "value": 25},
		{"id": "Speed", "value": [{"valueString": "900"}]}
	],
	"equipmentInfo": {
		"source_type": "MTP",
		"equipment_data": {
			"service_info": {"id": "Mixer01", "name": "Stirring"},
			"procedure_info": {"id": "Proc7", "name": "StirSlow"},
			"next_equipment": "Tank02",
			"equipment_requirements": [{"id": "Req1"}, {"id": "Req2", "description": "Needs a lid"}, {"description": "ignored"}],
			"recipe_parameters": [
				{"id": "Duration_Stirring", "default": 10, "min": 5, "max": 30, "unit": "s", "paramElem": {"Type": "AnaServParam"}},
				{"id": "P2", "name": "Speed", "default": "600", "max": 1000},
				{"id": "P3"}
			]
		}
	}
}`

func TestResolve_MTP(t *testing.T) {
	it := decodeItem(t, mtpItem)
	b := NewResolver(nil).Resolve(context.Background(), it)
	require.NotNil(t, b)

	assert.Equal(t, schema.SourceMTP, b.Source)
	assert.Equal(t, "Mixer01", b.EquipmentID)
	assert.Equal(t, "Stirring", b.ServiceName)
	assert.Equal(t, "Proc7", b.ProcedureID)
	assert.Equal(t, "StirSlow", b.ProcedureName)
	assert.Equal(t, "Tank02", b.NextEquipment)
	assert.Equal(t, []Requirement{
		{ID: "Req1", Description: "Equipment requirement for Stirring"},
		{ID: "Req2", Description: "Needs a lid"},
	}, b.Requirements)

	require.Len(t, b.Parameters, 3)

	dur := b.Parameters[0]
	assert.Equal(t, "Duration_Stirring", dur.ID)
	assert.Equal(t, "Duration_Stirring", dur.Description)
	assert.Equal(t, "AnaServParam", dur.SubType)
	assert.Equal(t, codec.Value{
		Text:               "25",
		DataType:           DataTypeMeasure,
		UnitOfMeasure:      "s",
		DataInterpretation: codec.DataInterpretationConstant,
	}, dur.Value)
	assert.Equal(t, "Duration_Stirring", dur.UserID)

	speed := b.Parameters[1]
	assert.Equal(t, "Speed", speed.Description, "matched by name")
	assert.Equal(t, "900", speed.Value.Text)
	assert.Equal(t, DataTypeDuration, speed.Value.DataType)
	assert.Equal(t, FallbackUnit, speed.Value.UnitOfMeasure)
	assert.Equal(t, FallbackSubType, speed.SubType)

	p3 := b.Parameters[2]
	assert.Equal(t, FallbackValue, p3.Value.Text)
	assert.Empty(t, p3.UserID)
}

func TestResolve_OverrideRule(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"user value wins", `25`, "25"},
		{"user zero wins", `0`, "0"},
		{"empty user value falls back to default", `""`, "10"},
		{"null user value falls back to default", `null`, "10"},
		{"object value", `{"valueString": "42", "unitOfMeasure": "s"}`, "42"},
		{"empty array", `[]`, "10"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			it := decodeItem(t, `{
				"id": "S1", "type": "process",
				"processElementParameter": [{"id": "d", "value": `+tc.value+`}],
				"equipmentInfo": {"source_type": "MTP", "equipment_data": {
					"recipe_parameters": [{"id": "d", "default": 10}]
				}}
			}`)
			b := NewResolver(nil).Resolve(context.Background(), it)
			require.Len(t, b.Parameters, 1)
			assert.Equal(t, tc.want, b.Parameters[0].Value.Text)
		})
	}
}

func TestResolve_AAS(t *testing.T) {
	it := decodeItem(t, `{
		"id": "S2", "type": "process",
		"processElementParameter": [{"id": "Temp", "value": "75"}],
		"equipmentInfo": {"source_type": "AAS", "equipment_data": {
			"aas_id": "urn:aas:heater:1",
			"properties": [
				{"id": "Temp", "name": "Temperature", "value": "60", "unit": "degC", "dataType": "float", "min": 20, "max": 70},
				{"id": "Power", "value": 3}
			]
		}}
	}`)
	b := NewResolver(nil).Resolve(context.Background(), it)
	require.NotNil(t, b)

	assert.Equal(t, schema.SourceAAS, b.Source)
	assert.Equal(t, "urn:aas:heater:1", b.EquipmentID)
	assert.Empty(t, b.Requirements)
	require.Len(t, b.Parameters, 2)

	assert.Equal(t, "Temperature", b.Parameters[0].Description)
	assert.Equal(t, "75", b.Parameters[0].Value.Text)
	assert.Equal(t, "float", b.Parameters[0].Value.DataType)
	assert.Equal(t, "degC", b.Parameters[0].Value.UnitOfMeasure)

	assert.Equal(t, "Power", b.Parameters[1].Description)
	assert.Equal(t, "3", b.Parameters[1].Value.Text)
	assert.Equal(t, DataTypeDuration, b.Parameters[1].Value.DataType)
}

func TestResolve_Legacy(t *testing.T) {
	it := decodeItem(t, `{
		"id": "S3", "type": "process",
		"processElementParameter": [{"id": "time", "value": [7]}],
		"equipmentInfo": {
			"instance": "Reactor1",
			"service": "Heating",
			"requirement": {"description": "Must be heatable"},
			"parameters": [
				{"id": "time", "value": "5", "description": "Heating time", "subType": "Int", "dataType": "Measure", "unit": "min"},
				{"id": "temp"}
			]
		}
	}`)
	b := NewResolver(nil).Resolve(context.Background(), it)
	require.NotNil(t, b)

	assert.Equal(t, schema.SourceLegacy, b.Source)
	assert.Equal(t, "Reactor1", b.EquipmentID)
	assert.Equal(t, "Heating", b.ServiceName)
	assert.Equal(t, []Requirement{{ID: "Equipment Requirement", Description: "Must be heatable"}}, b.Requirements)

	require.Len(t, b.Parameters, 2)
	assert.Equal(t, "Heating time", b.Parameters[0].Description)
	assert.Equal(t, "Int", b.Parameters[0].SubType)
	assert.Equal(t, "7", b.Parameters[0].Value.Text)
	assert.Equal(t, "min", b.Parameters[0].Value.UnitOfMeasure)

	assert.Equal(t, "temp", b.Parameters[1].Description)
	assert.Equal(t, FallbackValue, b.Parameters[1].Value.Text)
}

func TestResolve_TaggedWithoutDataIsLegacy(t *testing.T) {
	it := decodeItem(t, `{"id": "S4", "type": "process", "equipmentInfo": {"source_type": "MTP", "instance": "X1"}}`)
	b := NewResolver(nil).Resolve(context.Background(), it)
	require.NotNil(t, b)
	assert.Equal(t, schema.SourceLegacy, b.Source)
	assert.Equal(t, "X1", b.EquipmentID)
}

func TestResolve_NoEquipment(t *testing.T) {
	r := NewResolver(nil)
	assert.Nil(t, r.Resolve(context.Background(), nil))
	assert.Nil(t, r.Resolve(context.Background(), &schema.WorkspaceItem{ID: "S5"}))
}

func TestResolveAll_CollectsRangeWarnings(t *testing.T) {
	low := decodeItem(t, `{
		"id": "S1", "type": "process",
		"processElementParameter": [{"id": "d", "value": 2}],
		"equipmentInfo": {"source_type": "MTP", "equipment_data": {
			"recipe_parameters": [{"id": "d", "default": 10, "min": 5, "max": 20}]
		}}
	}`)
	high := decodeItem(t, `{
		"id": "S2", "type": "process",
		"processElementParameter": [{"id": "Temp", "value": "80.5"}],
		"equipmentInfo": {"source_type": "AAS", "equipment_data": {
			"aas_id": "heater", "properties": [{"id": "Temp", "min": 0, "max": 70.25}]
		}}
	}`)
	fine := decodeItem(t, mtpItem)
	bare := &schema.WorkspaceItem{ID: "M1", Type: schema.ItemTypeMaterial}

	var buf bytes.Buffer
	logger := logging.New(slog.LevelDebug, &buf)
	bindings, result := NewResolver(logger).ResolveAll(context.Background(), []*schema.WorkspaceItem{low, high, fine, bare})

	assert.Len(t, bindings, 3)
	assert.NotContains(t, bindings, bare)
	assert.True(t, result.Valid())

	warnings := result.WarningsWithCode(schema.ErrCodeParameterRange)
	require.Len(t, warnings, 2)
	assert.Equal(t, "Parameter d value 2 is below minimum 5", warnings[0].Message)
	assert.Equal(t, "Parameter Temp value 80.5 is above maximum 70.25", warnings[1].Message)
	assert.Equal(t, "Parameter d value 2 is below minimum 5\nParameter Temp value 80.5 is above maximum 70.25",
		schema.CombinedMessage(warnings))

	assert.Contains(t, buf.String(), "parameter out of range")
	assert.Contains(t, buf.String(), "item_id=S1")
}

func TestCheckRanges(t *testing.T) {
	minV, maxV := 5.0, 20.0
	item := &schema.WorkspaceItem{ID: "S1"}
	param := func(text, user string) *Binding {
		return &Binding{Parameters: []Parameter{{
			ID: "d", Value: codec.Value{Text: text}, UserID: user, Min: &minV, Max: &maxV,
		}}}
	}

	tests := []struct {
		name string
		b    *Binding
		want int
	}{
		{"inside", param("10", "d"), 0},
		{"on lower bound", param("5", "d"), 0},
		{"on upper bound", param("20", "d"), 0},
		{"below", param("4.9", "d"), 1},
		{"above", param("21", "d"), 1},
		{"non numeric", param("fast", "d"), 0},
		{"default value not checked", param("1", ""), 0},
		{"no bounds", &Binding{Parameters: []Parameter{{ID: "d", Value: codec.Value{Text: "1"}, UserID: "d"}}}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, CheckRanges(item, tc.b), tc.want)
		})
	}
}
