package bejson

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema describes the structural shape every BEJSON document
// must have. Field types are descriptive only and are not checked
// against record values.
const envelopeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["Fields"],
	"properties": {
		"Format":           {"type": "string"},
		"Format_Version":   {"type": "string"},
		"Format_Creator":   {"type": "string"},
		"Parent_Hierarchy": {"type": "string"},
		"Records_Type":     {"type": "array", "items": {"type": "string"}},
		"Fields": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"type": {"type": "string"}
				}
			}
		},
		"Values": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

var envelope = jsonschema.MustCompileString("bejson-envelope.json", envelopeSchema)
