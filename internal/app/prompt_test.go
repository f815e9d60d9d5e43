package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/billagee/dropbox-to-s3/internal/backup"
)

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "yes word", input: "yes\n", want: true},
		{name: "uppercase yes", input: "Y\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty defaults to no", input: "\n", want: false},
		{name: "garbage defaults to no", input: "maybe\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			confirm := TerminalConfirm(strings.NewReader(tt.input), &out)

			got, err := confirm("OK to proceed?")
			if err != nil {
				t.Fatalf("confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "OK to proceed? [y/N]: ") {
				t.Errorf("prompt not shown: %q", out.String())
			}
		})
	}
}

func TestAlwaysYes(t *testing.T) {
	var out bytes.Buffer
	confirm := AlwaysYes(&out)

	got, err := confirm("OK to move the 3 file(s) above?")
	if err != nil {
		t.Fatalf("confirm() error = %v", err)
	}
	if !got {
		t.Error("AlwaysYes should confirm")
	}
	if !strings.Contains(out.String(), "OK to move the 3 file(s) above? [y/N]: y") {
		t.Errorf("prompt should still be echoed: %q", out.String())
	}
}

func TestSelectYearMonth(t *testing.T) {
	choices := []backup.YearMonth{
		{Year: "2016", Month: "07"},
		{Year: "2016", Month: "08"},
	}

	t.Run("single choice needs no prompt", func(t *testing.T) {
		var out bytes.Buffer
		got, err := SelectYearMonth(strings.NewReader(""), &out, choices[:1])
		if err != nil {
			t.Fatalf("SelectYearMonth() error = %v", err)
		}
		if got != choices[0] {
			t.Errorf("got %v, want %v", got, choices[0])
		}
		if out.Len() != 0 {
			t.Errorf("unexpected prompt output: %q", out.String())
		}
	})

	t.Run("picks by number", func(t *testing.T) {
		var out bytes.Buffer
		got, err := SelectYearMonth(strings.NewReader("2\n"), &out, choices)
		if err != nil {
			t.Fatalf("SelectYearMonth() error = %v", err)
		}
		if got != choices[1] {
			t.Errorf("got %v, want %v", got, choices[1])
		}
		if !strings.Contains(out.String(), "1) 2016-07") || !strings.Contains(out.String(), "2) 2016-08") {
			t.Errorf("choices not listed: %q", out.String())
		}
	})

	t.Run("rejects out of range", func(t *testing.T) {
		var out bytes.Buffer
		if _, err := SelectYearMonth(strings.NewReader("9\n"), &out, choices); err == nil {
			t.Error("expected error for out-of-range selection")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		var out bytes.Buffer
		if _, err := SelectYearMonth(strings.NewReader(""), &out, nil); err == nil {
			t.Error("expected error for empty choice list")
		}
	})
}
