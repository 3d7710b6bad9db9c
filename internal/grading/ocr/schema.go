package ocr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mind-engage/gearscore/internal/affixdb"
)

// A null name or a null aspect marks an empty slot, which Drop treats as unused.
const affixSchema = `{
  "type": ["object", "null"],
  "required": ["name"],
  "properties": {
    "name":  {"type": ["string", "null"]},
    "value": {"type": ["number", "null"]},
    "isGA":  {"type": "boolean"}
  }
}`

var dropSchemaSrc = `{
  "type": "object",
  "required": ["item_power", "base_affixes"],
  "properties": {
    "item_power":     {"type": "integer", "minimum": 0},
    "base_affixes":   {"type": "array", "items": ` + affixSchema + `},
    "temper_affixes": {"type": "array", "items": ` + affixSchema + `},
    "aspect":         ` + affixSchema + `
  }
}`

const affixDBSchemaSrc = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "object",
    "required": ["label", "base", "temper"],
    "properties": {
      "label":   {"type": "string", "minLength": 1},
      "icon":    {"type": "string"},
      "base":    {"type": "array", "items": {"type": "string"}},
      "temper":  {"type": "array", "items": {"type": "string"}},
      "aspects": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

var (
	dropSchema    = jsonschema.MustCompileString("drop.json", dropSchemaSrc)
	affixDBSchema = jsonschema.MustCompileString("affixdb.json", affixDBSchemaSrc)
)

// ParseDrop validates raw model output and decodes it. Numbers the model
// wrote as strings ("+12.5%") are coerced before validation.
func ParseDrop(raw string) (DropExtraction, error) {
	doc, err := validated(raw, dropSchema)
	if err != nil {
		return DropExtraction{}, err
	}
	var out DropExtraction
	if err := json.Unmarshal(doc, &out); err != nil {
		return DropExtraction{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return out, nil
}

// ParseAffixDB validates raw model output as a class keyed affix DB.
func ParseAffixDB(raw string) (affixdb.DB, error) {
	doc, err := validated(raw, affixDBSchema)
	if err != nil {
		return nil, err
	}
	var out affixdb.DB
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return out, nil
}

func validated(raw string, schema *jsonschema.Schema) ([]byte, error) {
	body, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrInvalidRecord)
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	v = sanitizeNumbers(v, "")
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return json.Marshal(v)
}

// sanitizeNumbers rewrites string values of numeric fields into float64.
func sanitizeNumbers(v any, key string) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = sanitizeNumbers(child, k)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = sanitizeNumbers(child, key)
		}
		return val
	case string:
		if key != "value" && key != "item_power" {
			return val
		}
		s := strings.TrimSpace(strings.NewReplacer("+", "", "%", "", ",", "").Replace(val))
		if s == "" {
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return val
	default:
		return val
	}
}
