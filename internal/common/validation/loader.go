package validation

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type schemaDocument struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// ParseSchemaYAML builds a schema from a YAML rule table:
//
//	name: signin
//	fields:
//	  - name: username
//	    rules:
//	      - {kind: required, message: Username is required}
//	      - {kind: minLength, length: 4, message: ...}
func ParseSchemaYAML(data []byte) (*Schema, error) {
	var doc schemaDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("parse schema: name is required")
	}
	return NewSchema(doc.Name, doc.Fields...)
}
