package schemafile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	docskema "github.com/reoring/docskema"
	"github.com/reoring/docskema/mock"
	"github.com/reoring/docskema/registry"
	"github.com/reoring/docskema/schemafile"
)

const blogYAML = `
objects:
  - name: cta
    fields:
      - {name: label, type: string, max: 40}
      - {name: link, type: url}
  - name: hero
    title: Hero
    fields:
      - {name: heading, type: string, min: 1, max: 80}
      - {name: action, type: cta, optional: true}
documents:
  - name: author
    fields:
      - {name: name, type: string}
      - {name: email, type: email}
      - {name: avatar, type: image, hotspot: true, optional: true}
  - name: post
    preview:
      select: {title: title}
    fields:
      - {name: title, type: string, min: 1, max: 120}
      - {name: slug, type: slug, source: title}
      - {name: status, type: string, list: [draft, published]}
      - {name: rating, type: number, min: 0, max: 5, integer: true}
      - {name: published, type: datetime}
      - {name: author, type: reference, to: [author]}
      - name: sections
        type: array
        min: 1
        max: 3
        of:
          - {type: hero}
          - type: object
            fields:
              - {name: body, type: text, rows: 4}
`

func TestLoad_Blog(t *testing.T) {
	ctx := context.Background()
	s, err := schemafile.Load([]byte(blogYAML), schemafile.YAML)
	require.NoError(t, err)
	require.Equal(t, []string{"cta", "hero", "author", "post"}, s.Names())

	post, ok := s.Document("post")
	require.True(t, ok)
	d := post.Descriptor()
	require.Equal(t, "document", d.Type)
	require.NotNil(t, d.Preview)
	require.Len(t, d.Fields, 7)
	require.Equal(t, "hero", d.Fields[6].Of[0].Type)

	hero, ok := s.Object("hero")
	require.True(t, ok)
	require.Equal(t, "Hero", hero.Descriptor().Title)

	for seed := uint64(0); seed < 10; seed++ {
		s2, err := schemafile.Load([]byte(blogYAML), schemafile.YAML, registry.WithMockOptions(mock.Seed(seed)))
		require.NoError(t, err)
		raw, err := s2.Mock("post")
		require.NoError(t, err)
		out, err := s2.ParseResolve(ctx, "post", raw)
		require.NoError(t, err, "seed=%d", seed)
		_, ok := out.(map[string]any)["author"].(map[string]any)
		require.True(t, ok, "author should be resolved")
	}
}

func TestLoad_ValidationFromDefinition(t *testing.T) {
	ctx := context.Background()
	s, err := schemafile.Load([]byte(blogYAML), schemafile.YAML)
	require.NoError(t, err)

	raw, err := s.Mock("post")
	require.NoError(t, err)
	m := raw.(map[string]any)
	m["status"] = "archived"
	m["rating"] = 2.5
	delete(m, "title")

	_, err = s.Parse(ctx, "post", m)
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	codes := map[string]string{}
	for _, is := range iss {
		codes[is.Path] = is.Code
	}
	require.Equal(t, docskema.CodeRequired, codes["/title"])
	require.Equal(t, docskema.CodeInvalidEnum, codes["/status"])
	require.Contains(t, codes, "/rating")
}

func TestLoad_JSON(t *testing.T) {
	src := `{
	  "documents": [
	    {"name": "tag", "fields": [{"name": "label", "type": "string", "regex": "^[a-z]+$"}]}
	  ]
	}`
	s, err := schemafile.Load([]byte(src), schemafile.JSON)
	require.NoError(t, err)
	_, err = s.Parse(context.Background(), "tag", map[string]any{
		"_id": "t1", "_type": "tag", "_createdAt": "2024-01-01T00:00:00Z",
		"_updatedAt": "2024-01-01T00:00:00Z", "_rev": "r", "label": "Go",
	})
	iss, ok := docskema.AsIssues(err)
	require.True(t, ok)
	require.Equal(t, "/label", iss[0].Path)
	require.Equal(t, docskema.CodePattern, iss[0].Code)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"unknown key": {
			src:  "documents: [{name: a, fields: [{name: x, type: string, colour: red}]}]",
			want: "colour",
		},
		"unknown type": {
			src:  "documents: [{name: a, fields: [{name: x, type: widget}]}]",
			want: "unknown type widget",
		},
		"object cycle": {
			src: `
objects:
  - {name: a, fields: [{name: b, type: b}]}
  - {name: b, fields: [{name: a, type: a}]}`,
			want: "contains itself",
		},
		"dangling reference": {
			src:  "documents: [{name: a, fields: [{name: r, type: reference, to: [ghost]}]}]",
			want: "undeclared document ghost",
		},
		"reference without to": {
			src:  "documents: [{name: a, fields: [{name: r, type: reference}]}]",
			want: "reference without to",
		},
		"duplicate field": {
			src:  "documents: [{name: a, fields: [{name: x, type: string}, {name: x, type: number}]}]",
			want: "x",
		},
		"bad regex": {
			src:  "documents: [{name: a, fields: [{name: x, type: string, regex: '('}]}]",
			want: "schemafile",
		},
		"array without of": {
			src:  "documents: [{name: a, fields: [{name: xs, type: array}]}]",
			want: "array without of",
		},
		"duplicate names": {
			src:  "objects: [{name: a, fields: []}]\ndocuments: [{name: a, fields: []}]",
			want: "duplicate type name a",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := schemafile.Load([]byte(tc.src), schemafile.YAML)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(blogYAML), 0o644))

	s, err := schemafile.LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"author", "post"}, s.Documents())

	_, err = schemafile.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	require.Equal(t, schemafile.JSON, schemafile.FormatOf("a/b.JSON"))
	require.Equal(t, schemafile.YAML, schemafile.FormatOf("a/b.yml"))
}
