package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/piwi3910/BinPacker/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// ─── Text format ───────────────────────────────────────────

func TestParseInstance_Basic(t *testing.T) {
	data := "3\n10 8\nA 4 4\nB 6 2\nC 3 5\n"
	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	in := result.Instance
	if in.BinWidth != 10 || in.BinHeight != 8 {
		t.Errorf("expected bin 10x8, got %dx%d", in.BinWidth, in.BinHeight)
	}
	want := []model.Item{
		model.NewItem("A", 4, 4),
		model.NewItem("B", 6, 2),
		model.NewItem("C", 3, 5),
	}
	if diff := cmp.Diff(want, in.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if in.Declared != 3 {
		t.Errorf("expected declared 3, got %d", in.Declared)
	}
}

func TestParseInstance_BlankLinesAndExtraTokens(t *testing.T) {
	data := "\n  2 objects\n\n10 10\n\nA 1 2 extra\n\n  B 3 4  \n"
	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Instance.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Instance.Items))
	}
	if result.Instance.Items[1] != model.NewItem("B", 3, 4) {
		t.Errorf("unexpected second item %+v", result.Instance.Items[1])
	}
}

func TestParseInstance_ShortLinesSkippedSilently(t *testing.T) {
	data := "2\n10 10\nA 1\nB 2 2\nC 3 3\n"
	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Instance.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Instance.Items))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("short lines must not warn, got %v", result.Warnings)
	}
}

func TestParseInstance_MalformedLineWarns(t *testing.T) {
	data := "3\n10 10\nA 1 2\nB x 2\nC 0 4\n"
	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Instance.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Instance.Items))
	}

	want := []string{
		"Skipping malformed line: 'B x 2'",
		"Skipping line with non-positive size: 'C 0 4'",
		"Declared 3 objects, but parsed 1",
	}
	if diff := cmp.Diff(want, result.Warnings); diff != "" {
		t.Errorf("warnings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstance_LongLines(t *testing.T) {
	padding := strings.Repeat("x ", 100*1024)
	junk := strings.Repeat("y", 200*1024)
	data := "2\n10 8\nA 4 4 " + padding + "\n" + junk + " 1 1\nB 2 2\n"

	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Item{model.NewItem("A", 4, 4), model.NewItem(junk, 1, 1), model.NewItem("B", 2, 2)}
	if diff := cmp.Diff(want, result.Instance.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInstance_LongMalformedLineWarns(t *testing.T) {
	long := "A " + strings.Repeat("9", 100*1024) + "z 4"
	data := "1\n10 8\n" + long + "\nB 2 2"

	result, err := ParseInstance(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Instance.Items) != 1 || result.Instance.Items[0].ID != "B" {
		t.Errorf("expected only B, got %+v", result.Instance.Items)
	}
	if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0], "Skipping malformed line") {
		t.Errorf("expected one malformed-line warning, got %v", result.Warnings)
	}
}

func TestParseInstance_DeclaredMismatch(t *testing.T) {
	result, err := ParseInstance(strings.NewReader("5\n4 4\nA 1 1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "Declared 5 objects, but parsed 1" {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestParseInstance_DuplicateIDWarns(t *testing.T) {
	result, err := ParseInstance(strings.NewReader("2\n4 4\nA 1 1\nA 2 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Instance.Items) != 2 {
		t.Errorf("duplicates are kept, got %d items", len(result.Instance.Items))
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected one duplicate warning, got %v", result.Warnings)
	}
}

func TestParseInstance_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrEmptyInstance},
		{"blank only", "\n  \n\t\n", ErrEmptyInstance},
		{"count only", "3\n", ErrBadHeader},
		{"bad count", "three\n10 10\nA 1 1\n", ErrBadHeader},
		{"bad bin", "1\n10 ten\nA 1 1\n", ErrBadHeader},
		{"one bin token", "1\n10\nA 1 1\n", ErrBadHeader},
		{"zero bin", "1\n0 10\nA 1 1\n", ErrBadHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInstance(strings.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseBinSize(t *testing.T) {
	got, err := ParseBinSize(" 100X60 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (BinSize{Width: 100, Height: 60}) {
		t.Errorf("unexpected size %+v", got)
	}

	for _, bad := range []string{"", "100", "ax60", "100x", "0x5", "-1x5"} {
		if _, err := ParseBinSize(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

// ─── Load ──────────────────────────────────────────────────

func TestLoad_TextFile(t *testing.T) {
	path := writeFile(t, "sample.txt", "1\n5 5\nA 2 3\n")
	result, err := Load(path, BinSize{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Instance.Name != "sample" {
		t.Errorf("expected name 'sample', got %q", result.Instance.Name)
	}
	if len(result.Instance.Items) != 1 {
		t.Errorf("expected 1 item, got %d", len(result.Instance.Items))
	}
}

func TestLoad_UnknownExtensionUsesText(t *testing.T) {
	path := writeFile(t, "inst.dat", "1\n5 5\nA 2 3\n")
	if _, err := Load(path, BinSize{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"), BinSize{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoad_WrapsParseError(t *testing.T) {
	path := writeFile(t, "bad.txt", "x\n1 1\n")
	_, err := Load(path, BinSize{})
	if !errors.Is(err, ErrBadHeader) {
		t.Errorf("expected ErrBadHeader, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.txt") {
		t.Errorf("error should name the file: %v", err)
	}
}
