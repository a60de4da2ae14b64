// Package dsl provides the schema node builders.
//
// Every builder yields a node with three independent artifacts derived from
// one declaration: a descriptor (the content store's schema fragment), a
// parser from raw wire values to application values, and a deterministic
// mock producer whose output the parser accepts.
//
// Overview
//   - Leaves: String, Text, Email, URL, Number, Boolean, DateTime, Date,
//     Slug, Geopoint, Image, File.
//   - Composition: Fields builds an ordered FieldSet; Object and NamedObject
//     wrap one; NamedObject.Ref points at a named object by name.
//   - Collections: Items builds an ordered ItemSet; Array holds one or more
//     kinds. With several kinds, parsed elements are Element values tagged
//     with the index of the matching kind.
//   - Documents: Document adds the identity fields _id, _type, _createdAt,
//     _updatedAt and _rev, and an optional Preview.
//   - References: Reference().To(doc) points at documents by id; Resolve
//     replaces references through a docskema.Resolver.
//
// Builders are immutable values. Constraint methods (Min, Max, Length, ...)
// and composition methods (Field, Item, To) return extended copies, so a
// node can be shared between several parents.
//
// Each constructor accepts Options overriding one artifact at a time:
// ParseWith, MockWith, DescribeWith and Validation, plus descriptor
// metadata such as Title and Description.
//
// Example
//
//	author := dsl.Document("author", dsl.Fields().
//	    Field("name", dsl.String().Max(80)))
//
//	post := dsl.Document("post", dsl.Fields().
//	    Field("title", dsl.String().Min(1).Max(120)).
//	    Field("slug", dsl.Slug().Source("title")).
//	    Field("author", dsl.Reference().To(author)).
//	    OptionalField("tags", dsl.ArrayOf(dsl.String()).Max(5)),
//	).Preview(descriptor.Preview{Select: map[string]string{"title": "title"}})
//
//	raw := post.Mock(mock.New(mock.Seed(7)))
//	v, err := post.Parse(ctx, raw) // err == nil
//
// Construction mistakes (duplicate field names, empty names, invalid
// patterns) panic. Parse failures are always docskema.Issues.
package dsl
