// Package docskema describes content-store document schemas once and derives
// three artifacts from each declaration:
//
// - A descriptor: the schema fragment the content store consumes (see descriptor/)
// - A parser from raw wire values to typed application values, failing with Issues
// - A deterministic mock producer whose output the same parser accepts (see mock/)
//
// Design policy:
// - Keep only the node contract, error model and decode helpers in the root package.
// - Place node builders under dsl/, codecs under codec/, schema assembly under
//   registry/, file-based definitions under schemafile/, and the CLI under cmd/docskema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  post := dsl.Document("post", dsl.Fields().Field("title", dsl.String()))
//  v, err := docskema.ParseJSON(ctx, post, data)
//  raw := post.Mock(mock.New(mock.Seed(1)))
//
//  schema := registry.New().Document(post).MustBuild()
//  resolved, err := docskema.ParseResolve(ctx, post, raw, schema)
//
// # Errors
//
// Every parse failure is an Issues value: a list of Issue entries, each with a
// JSON Pointer path from the root to the offending value and a stable code
// (invalid_type, required, too_long, ...). Use AsIssues or errors.As to
// extract it. Construction mistakes such as duplicate field names panic.
package docskema
