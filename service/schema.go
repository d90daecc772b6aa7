package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var nullableString = map[string]any{"type": []string{"string", "null"}}

var normalizedFields = []string{
	"title", "property_address", "client_name", "client_email", "buyer_name", "buyer_email",
	"seller_name", "seller_email", "purchase_price", "closing_date", "inspection_date",
	"inspection_response_date", "loan_contingency_date", "appraisal_date", "final_walkthrough_date",
	"summary",
}

// summaryArtifactSchema describes the persisted artifact. Every contract key
// is required so a missing field is caught before it reaches storage.
func summaryArtifactSchema() map[string]any {
	contractProps := map[string]any{}
	for _, f := range normalizedFields {
		contractProps[f] = nullableString
	}
	contractProps["risk_items"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"severity", "description"},
			"properties": map[string]any{
				"severity":    map[string]any{"type": "string", "minLength": 1},
				"description": map[string]any{"type": "string", "minLength": 1},
			},
		},
	}

	return map[string]any{
		"type":     "object",
		"required": []string{"generated_at", "parsed_contract", "diagnostics"},
		"properties": map[string]any{
			"generated_at": map[string]any{"type": "string", "minLength": 1},
			"parsed_contract": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             append(append([]string{}, normalizedFields...), "risk_items"),
				"properties":           contractProps,
			},
			"diagnostics": map[string]any{
				"type":     "object",
				"required": []string{"parser", "used_fallback", "primary_error"},
				"properties": map[string]any{
					"parser":        map[string]any{"enum": []string{"primary", "vision-fallback"}},
					"used_fallback": map[string]any{"type": "boolean"},
					"primary_error": nullableString,
				},
			},
		},
	}
}

var (
	artifactSchemaOnce sync.Once
	artifactSchema     *jsonschema.Schema
	artifactSchemaErr  error
)

func compiledArtifactSchema() (*jsonschema.Schema, error) {
	artifactSchemaOnce.Do(func() {
		b, err := json.Marshal(summaryArtifactSchema())
		if err != nil {
			artifactSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("summary_artifact.json", strings.NewReader(string(b))); err != nil {
			artifactSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		artifactSchema, artifactSchemaErr = compiler.Compile("summary_artifact.json")
	})
	return artifactSchema, artifactSchemaErr
}

// ValidateSummaryArtifact checks an encoded artifact against its schema.
func ValidateSummaryArtifact(data []byte) error {
	schema, err := compiledArtifactSchema()
	if err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal artifact: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("artifact does not match schema: %w", err)
	}
	return nil
}
