package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

type outputFormat string

const (
	outputYAML outputFormat = "yaml"
	outputJSON outputFormat = "json"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(value string) error {
	switch outputFormat(value) {
	case outputYAML, outputJSON:
		*f = outputFormat(value)
		return nil
	}
	return errors.Errorf("unsupported output format %q, expected %q or %q", value, outputYAML, outputJSON)
}

func (f *outputFormat) Type() string {
	return "format"
}

func (f outputFormat) write(w io.Writer, v interface{}) error {
	var (
		data []byte
		err  error
	)
	switch f {
	case outputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = w.Write(data)
	return err
}

func fingerprint(f uint64) string {
	return fmt.Sprintf("%016x", f)
}
