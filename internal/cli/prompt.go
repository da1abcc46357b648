package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt.
	Accepted bool
	// Cancelled is true if reading the answer failed.
	Cancelled bool
}

// Confirm asks a yes/no question and reads a single line of input.
//
// Pressing Enter without input selects defaultYes. Valid inputs are "y" and
// "yes" (any case) for acceptance and "n" and "no" for refusal; anything else
// declines.
func Confirm(writer io.Writer, reader io.Reader, question string, defaultYes bool) PromptResult {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(writer, "? %s %s ", question, hint)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error (Ctrl+D)
		return PromptResult{Accepted: false}
	}

	input := strings.TrimSpace(scanner.Text())
	if input == "" {
		return PromptResult{Accepted: defaultYes}
	}

	switch strings.ToLower(input) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
