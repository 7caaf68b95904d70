// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Doc: {
	name:      string
	count?:    int
	platforms?: [...string]
	...
}
`

type testDoc struct {
	Name      string   `json:"name"`
	Count     int      `json:"count"`
	Platforms []string `json:"platforms"`
}

func TestParseAndDecode_JSONDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "expo-camera", "count": 2, "platforms": ["ios", "android"], "extra": {"a": 1}}`)
	result, err := ParseAndDecodeString[testDoc](testSchema, data, "#Doc", WithFilename("doc.json"))
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	if result.Value.Name != "expo-camera" {
		t.Errorf("Name = %q, want %q", result.Value.Name, "expo-camera")
	}
	if len(result.Value.Platforms) != 2 || result.Value.Platforms[1] != "android" {
		t.Errorf("Platforms = %v, want [ios android]", result.Value.Platforms)
	}
}

func TestParseAndDecode_OpenMap(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "x", "ios": {"modules": ["XModule"]}}`)
	result, err := ParseAndDecodeString[map[string]any](testSchema, data, "#Doc")
	if err != nil {
		t.Fatalf("ParseAndDecode() error = %v", err)
	}
	ios, ok := (*result.Value)["ios"].(map[string]any)
	if !ok {
		t.Fatalf("ios section has type %T, want map[string]any", (*result.Value)["ios"])
	}
	if _, ok := ios["modules"]; !ok {
		t.Error("ios.modules missing from decoded map")
	}
}

func TestParseAndDecode_SchemaViolation(t *testing.T) {
	t.Parallel()

	data := []byte(`{"name": "x", "platforms": ["ios", 3]}`)
	_, err := ParseAndDecodeString[testDoc](testSchema, data, "#Doc", WithFilename("bad.json"))
	if err == nil {
		t.Fatal("expected schema violation error")
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestParseAndDecode_SyntaxError(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[testDoc](testSchema, []byte(`{"name": `), "#Doc", WithFilename("broken.json"))
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if !strings.Contains(err.Error(), "broken.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
}

func TestParseAndDecode_FileTooLarge(t *testing.T) {
	t.Parallel()

	_, err := ParseAndDecodeString[testDoc](testSchema, []byte(`{"name": "x"}`), "#Doc", WithMaxFileSize(4))
	if err == nil {
		t.Fatal("expected size limit error")
	}
}
