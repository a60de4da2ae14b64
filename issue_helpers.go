package docskema

import "github.com/reoring/docskema/i18n"

// IssueAt creates an Issue at p with the given code, message and params.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// NewIssue builds an Issue at the root pointer with the translated message
// for code.
func NewIssue(code, hint string) Issue {
	return Issue{Path: "/", Code: code, Message: i18n.T(code, nil), Hint: hint}
}

// Fail returns a single-issue Issues error at the root pointer.
func Fail(code, hint string) Issues { return Issues{NewIssue(code, hint)} }

// Rebase converts err into Issues whose paths are nested under base (a JSON
// Pointer segment such as "/title" or "/3"). Non-Issues errors are wrapped
// as parse_error at base.
func Rebase(base string, err error) Issues {
	if err == nil {
		return nil
	}
	child, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		if p == "" || p == "/" {
			p = base
		} else if p[0] == '/' {
			p = base + p
		} else {
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
