// Package codec converts between wire strings and application values for
// the date-like leaves.
package codec

import (
	"context"
	"time"

	docskema "github.com/reoring/docskema"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() docskema.Codec[string, time.Time] { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(ctx context.Context, a string) (time.Time, error) {
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, docskema.Issues{{Path: "/", Code: docskema.CodeInvalidFormat, Message: "invalid RFC3339 time", Hint: "expected RFC3339 timestamp", Cause: err}}
	}
	return t, nil
}

func (rfc3339Codec) Encode(ctx context.Context, b time.Time) (string, error) {
	if b.IsZero() {
		return "", docskema.Issues{{Path: "/", Code: docskema.CodeInvalidType, Message: "cannot encode zero time"}}
	}
	return FormatRFC3339(b), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 normalizes t to UTC and formats it using RFC3339Nano (Go
// trims trailing zeros).
func FormatRFC3339(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
