package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

const testSchema = `
documents:
  - name: author
    fields:
      - {name: name, type: string, max: 60}
  - name: post
    fields:
      - {name: title, type: string, min: 1, max: 120}
      - {name: author, type: reference, to: [author]}
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, schemaPath, logLevel, outputFormat = "", "", "", ""
	descriptorType, mockType, validateType = "", "", ""
	mockCount, mockSeed, mockResolve = 1, -1, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDescriptorCommand(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.yaml", testSchema)

	out, err := run(t, "descriptor", "-f", schema)
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	var ds []map[string]any
	if err := json.Unmarshal([]byte(out), &ds); err != nil {
		t.Fatalf("output is not a JSON list: %v\n%s", err, out)
	}
	if len(ds) != 2 || ds[1]["name"] != "post" {
		t.Fatalf("unexpected descriptors: %v", ds)
	}

	out, err = run(t, "descriptor", "-f", schema, "--type", "author", "-o", "yaml")
	if err != nil {
		t.Fatalf("descriptor yaml: %v", err)
	}
	if !strings.HasPrefix(out, "type: document\n") {
		t.Fatalf("want yaml descriptor, got:\n%s", out)
	}

	if _, err := run(t, "descriptor", "-f", schema, "--type", "nope"); err == nil {
		t.Fatalf("expected unknown type error")
	}
}

func TestMockAndValidateCommands(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", testSchema)

	first, err := run(t, "mock", "-f", schema, "--type", "post", "--seed", "3")
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	second, err := run(t, "mock", "-f", schema, "--type", "post", "--seed", "3")
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if first != second {
		t.Fatalf("same seed should give the same output:\n%s\n%s", first, second)
	}

	good := writeFile(t, dir, "good.json", first)
	out, err := run(t, "validate", "-f", schema, "--type", "post", good)
	if err != nil {
		t.Fatalf("validate good: %v\n%s", err, out)
	}

	bad := writeFile(t, dir, "bad.yaml", "_type: post\ntitle: \"\"\n")
	out, err = run(t, "validate", "-f", schema, "--type", "post", good, bad)
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, want := range []string{"/title", "/_id", "/author"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %s:\n%s", want, out)
		}
	}
}

func TestMockResolve(t *testing.T) {
	schema := writeFile(t, t.TempDir(), "schema.yaml", testSchema)

	out, err := run(t, "mock", "-f", schema, "--type", "post", "--resolve", "--count", "2")
	if err != nil {
		t.Fatalf("mock --resolve: %v", err)
	}
	var posts []map[string]any
	if err := json.Unmarshal([]byte(out), &posts); err != nil {
		t.Fatalf("output is not a JSON list: %v\n%s", err, out)
	}
	if len(posts) != 2 {
		t.Fatalf("want 2 posts got %d", len(posts))
	}
	for _, p := range posts {
		a, ok := p["author"].(map[string]any)
		if !ok || a["_type"] != "author" {
			t.Fatalf("author not resolved: %v", p["author"])
		}
	}
}
