package app

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

func chooseEntryFZF(entries []Entry) (Entry, error) {
	var input bytes.Buffer
	for i, e := range entries {
		line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\n", i, e.Category.Title(), e.Change, e.Name, trim(e.Summary(), 120))
		input.WriteString(line)
	}

	cmd := exec.Command("fzf", "--prompt", "env-diff> ", "--delimiter", "\t", "--with-nth", "2,3,4,5", "--height", "100%", "--layout", "reverse")
	cmd.Stdin = &input
	out, err := cmd.Output()
	if err != nil {
		return Entry{}, fmt.Errorf("fzf selection canceled or failed: %w", err)
	}

	selected := strings.TrimSpace(string(out))
	if selected == "" {
		return Entry{}, fmt.Errorf("no entry selected")
	}
	parts := strings.Split(selected, "\t")
	idx, err := strconv.Atoi(parts[0])
	if err != nil || idx < 0 || idx >= len(entries) {
		return Entry{}, fmt.Errorf("invalid fzf output %q", selected)
	}
	return entries[idx], nil
}
