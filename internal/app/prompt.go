package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/billagee/dropbox-to-s3/internal/backup"
)

// StdinIsTerminal reports whether stdin is attached to a TTY. Prompts are
// only meaningful when it is; otherwise runs must pass --yes.
func StdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// TerminalConfirm returns a confirmer that prints the prompt to w and reads
// a y/n answer from r. Anything other than y/yes counts as no.
func TerminalConfirm(r io.Reader, w io.Writer) backup.ConfirmFunc {
	reader := bufio.NewReader(r)
	return func(prompt string) (bool, error) {
		fmt.Fprintf(w, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false, fmt.Errorf("reading confirmation: %w", err)
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

// AlwaysYes returns a confirmer that answers every prompt affirmatively,
// for --yes and unattended runs. The prompt is still echoed so the log of
// an unattended run reads the same as an interactive one.
func AlwaysYes(w io.Writer) backup.ConfirmFunc {
	return func(prompt string) (bool, error) {
		fmt.Fprintf(w, "%s [y/N]: y\n", prompt)
		return true, nil
	}
}

// SelectYearMonth presents the detected year/month groups found in the
// source folder and reads the user's pick. Used when --month is omitted.
func SelectYearMonth(r io.Reader, w io.Writer, choices []backup.YearMonth) (backup.YearMonth, error) {
	if len(choices) == 0 {
		return backup.YearMonth{}, fmt.Errorf("no dated files found in source folder")
	}
	if len(choices) == 1 {
		return choices[0], nil
	}

	fmt.Fprintln(w, "Multiple year/month groups found in source folder:")
	for i, ym := range choices {
		fmt.Fprintf(w, "  %d) %s\n", i+1, ym)
	}
	fmt.Fprintf(w, "Select one [1-%d]: ", len(choices))

	reader := bufio.NewReader(r)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return backup.YearMonth{}, fmt.Errorf("reading selection: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > len(choices) {
		return backup.YearMonth{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}
	return choices[n-1], nil
}
