package engine

import "fmt"

// schemaError is one structural violation found by validateSchema.
type schemaError struct {
	keyword string // "type", "properties", "items"
	path    string
	message string
}

var validSchemaTypes = map[string]bool{
	"string": true, "number": true, "integer": true, "boolean": true,
	"null": true, "object": true, "array": true,
}

// validateSchema applies the strict JSON-Schema-7 structural checks from
// spec.md §4.9. No library in the retrieved pack implements this exact
// rule set (missing-type-for-properties/items, invalid type names,
// recursive nested-property checks with these specific messages), so it
// is hand-rolled; see DESIGN.md.
func validateSchema(schema map[string]any) []schemaError {
	var errs []schemaError
	walkSchema(schema, "$", &errs)
	return errs
}

func walkSchema(node map[string]any, path string, errs *[]schemaError) {
	if node == nil {
		return
	}

	declaredType, hasType := node["type"].(string)
	_, hasProperties := node["properties"]
	_, hasItems := node["items"]

	if hasProperties && !hasType {
		*errs = append(*errs, schemaError{keyword: "properties", path: path, message: fmt.Sprintf("%s: missing type 'object'", path)})
	}
	if hasItems && !hasType {
		*errs = append(*errs, schemaError{keyword: "items", path: path, message: fmt.Sprintf("%s: missing type 'array'", path)})
	}
	if hasType && !validSchemaTypes[declaredType] {
		*errs = append(*errs, schemaError{keyword: "type", path: path, message: fmt.Sprintf("%s: invalid type %q", path, declaredType)})
	}

	if props, ok := node["properties"].(map[string]any); ok {
		for name, raw := range props {
			if child, ok := raw.(map[string]any); ok {
				walkSchema(child, path+".properties."+name, errs)
			}
		}
	}

	if items, ok := node["items"].(map[string]any); ok {
		walkSchema(items, path+".items", errs)
	}
}

const (
	schemaErrorsInDetail    = 5
	schemaErrorsInOccurrences = 10
)
