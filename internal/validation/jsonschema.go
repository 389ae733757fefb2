package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/pkg/schema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Bundled schema resources, keyed by the root element they describe.
var bundledSchemas = map[string]struct {
	file string
	url  string
}{
	b2mml.RootGRecipe: {
		file: "schemas/grecipe.json",
		url:  "https://batchml.rendis.dev/schemas/grecipe.json",
	},
	b2mml.RootBatchInfo: {
		file: "schemas/batchinformation.json",
		url:  "https://batchml.rendis.dev/schemas/batchinformation.json",
	},
}

// SchemaValidator checks the infoset of a document against the bundled
// schema of its root element. It is safe for concurrent use.
type SchemaValidator struct {
	schemas map[string]*jsonschema.Schema
}

// NewSchemaValidator compiles the bundled schemas.
func NewSchemaValidator() (*SchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	v := &SchemaValidator{schemas: make(map[string]*jsonschema.Schema, len(bundledSchemas))}
	for root, res := range bundledSchemas {
		raw, err := schemaFS.ReadFile(res.file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", res.file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("unmarshal schema %s: %w", res.file, err)
		}
		if err := c.AddResource(res.url, doc); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", res.url, err)
		}
		compiled, err := c.Compile(res.url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", res.url, err)
		}
		v.schemas[root] = compiled
	}
	return v, nil
}

// Supports reports whether a schema is bundled for the root element.
func (v *SchemaValidator) Supports(root string) bool {
	_, ok := v.schemas[root]
	return ok
}

// ValidateDocument returns one SCHEMA_VIOLATION error per violated
// constraint. An unknown root element is itself a violation.
func (v *SchemaValidator) ValidateDocument(doc *b2mml.Document) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if doc == nil {
		result.AddError("/", schema.ErrCodeSchemaViolation, "document is nil")
		return result
	}
	compiled, ok := v.schemas[doc.Name]
	if !ok {
		result.AddError("/", schema.ErrCodeSchemaViolation,
			fmt.Sprintf("no schema for root element %q", doc.Name))
		return result
	}

	instance, err := toJSONValue(b2mml.DocumentInfoset(doc))
	if err != nil {
		result.AddError("/", schema.ErrCodeSchemaViolation, "failed to project document: "+err.Error())
		return result
	}

	if err := compiled.Validate(instance); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			result.AddError("/", schema.ErrCodeSchemaViolation, err.Error())
			return result
		}
		for _, viol := range collectViolations(verr) {
			result.AddError(viol.path, schema.ErrCodeSchemaViolation, viol.message)
		}
	}
	return result
}

// toJSONValue round-trips a Go value through JSON encoding/decoding so that
// the value has the shape the jsonschema library expects.
func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(b))
}

type violation struct {
	path    string
	message string
}

// collectViolations walks a ValidationError tree and collects the leaf
// errors with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []violation {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []violation{{path: loc, message: verr.Error()}}
	}

	var out []violation
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}
