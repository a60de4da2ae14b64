package codec

import (
	"context"
	"time"

	docskema "github.com/reoring/docskema"
)

// DateLayout is the wire layout of calendar dates.
const DateLayout = "2006-01-02"

// Date returns a Codec between YYYY-MM-DD strings and time.Time values at
// UTC midnight.
func Date() docskema.Codec[string, time.Time] { return dateCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(ctx context.Context, a string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, a, time.UTC)
	if err != nil {
		return time.Time{}, docskema.Issues{{Path: "/", Code: docskema.CodeInvalidFormat, Message: "invalid calendar date", Hint: "expected YYYY-MM-DD", Cause: err}}
	}
	return t, nil
}

func (dateCodec) Encode(ctx context.Context, b time.Time) (string, error) {
	if b.IsZero() {
		return "", docskema.Issues{{Path: "/", Code: docskema.CodeInvalidType, Message: "cannot encode zero date"}}
	}
	return FormatDate(b), nil
}

// FormatDate formats the calendar date of t (in UTC).
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }
