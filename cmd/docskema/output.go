package main

import (
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// write encodes v to w in the configured output format.
func write(w io.Writer, v any) error {
	if cfg.Output.Format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(cfg.Output.Indent)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	b, err := json.MarshalIndent(v, "", strings.Repeat(" ", cfg.Output.Indent))
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
