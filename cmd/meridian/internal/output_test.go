package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestTextFormatter_PrintSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewTextFormatter(buf)

	if err := f.PrintSuccess("report finalized"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "✓ report finalized\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestTextFormatter_PrintError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewTextFormatter(buf)

	if err := f.PrintError("run failed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "✗ run failed\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestTextFormatter_PrintTable(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewTextFormatter(buf)

	headers := []string{"thread", "status"}
	rows := [][]string{
		{"thread-01", "completed"},
		{"thread-02", "suspended"},
	}

	if err := f.PrintTable(headers, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"THREAD", "STATUS", "thread-01", "completed", "thread-02", "suspended"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTextFormatter_PrintJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewTextFormatter(buf)

	if err := f.PrintJSON(map[string]int{"version": 6}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["version"] != 6 {
		t.Errorf("expected version 6, got %d", decoded["version"])
	}
}

func TestJSONFormatter_PrintSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewJSONFormatter(buf)

	if err := f.PrintSuccess("done"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["status"] != "success" || decoded["message"] != "done" {
		t.Errorf("unexpected payload: %v", decoded)
	}
}

func TestJSONFormatter_PrintTable(t *testing.T) {
	buf := &bytes.Buffer{}
	f := NewJSONFormatter(buf)

	headers := []string{"case", "result"}
	rows := [][]string{
		{"simple_1", "pass"},
		{"complex_2"},
	}

	if err := f.PrintTable(headers, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded struct {
		Headers []string            `json:"headers"`
		Data    []map[string]string `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(decoded.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(decoded.Data))
	}
	if decoded.Data[0]["case"] != "simple_1" || decoded.Data[0]["result"] != "pass" {
		t.Errorf("unexpected first row: %v", decoded.Data[0])
	}
	// Short rows are padded with empty strings.
	if decoded.Data[1]["result"] != "" {
		t.Errorf("expected empty padding for short row, got %q", decoded.Data[1]["result"])
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name   string
		format OutputFormat
		isJSON bool
	}{
		{"json format", FormatJSON, true},
		{"text format", FormatText, false},
		{"unknown format falls back to text", OutputFormat("yaml"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.format, &bytes.Buffer{})
			_, isJSON := f.(*JSONFormatter)
			if isJSON != tt.isJSON {
				t.Errorf("expected isJSON=%v for %q, got %v", tt.isJSON, tt.format, isJSON)
			}
		})
	}
}
