package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatYAML  OutputFormat = "yaml"
)

// AllFormats lists every format NewFormatter accepts.
var AllFormats = []OutputFormat{FormatTable, FormatJSON, FormatCSV, FormatYAML}

// Formatter defines the interface for formatting command results.
type Formatter interface {
	Format(data interface{}, writer io.Writer) error
}

// NewFormatter creates a new Formatter for the given format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatCSV:
		return &CSVFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data interface{}, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data interface{}, writer io.Writer) error {
	enc := yaml.NewEncoder(writer)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// TableFormatter formats a slice of structs as a table. Columns are the
// fields with a `header` tag; an optional `format` tag is a fmt verb for the
// cell. A single struct is printed as a one-row table.
type TableFormatter struct{}

func (f *TableFormatter) Format(data interface{}, writer io.Writer) error {
	rows, err := rowsOf(data)
	if err != nil || rows.Len() == 0 {
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	if _, err := fmt.Fprintln(w, strings.Join(getHeaders(rows.Index(0).Type()), "\t")); err != nil {
		return err
	}
	for i := 0; i < rows.Len(); i++ {
		if _, err := fmt.Fprintln(w, strings.Join(getRowValues(rows.Index(i)), "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CSVFormatter formats data as CSV using the same tags as TableFormatter.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(data interface{}, writer io.Writer) error {
	rows, err := rowsOf(data)
	if err != nil || rows.Len() == 0 {
		return err
	}

	w := csv.NewWriter(writer)
	if err := w.Write(getHeaders(rows.Index(0).Type())); err != nil {
		return err
	}
	for i := 0; i < rows.Len(); i++ {
		if err := w.Write(getRowValues(rows.Index(i))); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func rowsOf(data interface{}) (reflect.Value, error) {
	val := reflect.ValueOf(data)
	switch val.Kind() {
	case reflect.Slice:
		return val, nil
	case reflect.Struct, reflect.Ptr:
		one := reflect.MakeSlice(reflect.SliceOf(val.Type()), 1, 1)
		one.Index(0).Set(val)
		return one, nil
	}
	return reflect.Value{}, fmt.Errorf("data must be a struct or a slice, got %T", data)
}

func getHeaders(t reflect.Type) []string {
	var headers []string
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("header"); tag != "" {
			headers = append(headers, tag)
		}
	}
	return headers
}

func getRowValues(v reflect.Value) []string {
	var values []string
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("header") == "" {
			continue
		}
		verb := field.Tag.Get("format")
		if verb == "" {
			verb = "%v"
		}
		values = append(values, fmt.Sprintf(verb, v.Field(i).Interface()))
	}
	return values
}
