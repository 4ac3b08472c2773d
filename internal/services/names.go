package services

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength is the maximum participant or task name length in characters.
	MaxNameLength = 50
	// MaxDescriptionLength is the maximum task description length in characters.
	MaxDescriptionLength = 200
)

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLength)
	}
	return name, nil
}

func validateDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}
	return desc, nil
}

// splitLines splits bulk input on line breaks, accepting \n and \r\n.
// Blank lines are separators, not entries.
func splitLines(input string) []string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := make([]string, 0)
	for _, line := range strings.Split(input, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
