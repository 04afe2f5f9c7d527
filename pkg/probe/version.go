package probe

import (
	"fmt"
	"regexp"
	"strings"
)

// reVersion matches the first dotted numeric triple, e.g. 3.28.1.
var reVersion = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// VersionError reports a --version first line that carries no version triple.
type VersionError struct {
	Tool string
	Line string
}

func (e *VersionError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("failed to match a version for %s: empty --version output", e.Tool)
	}
	return fmt.Sprintf("failed to match a version for %s: %q", e.Tool, e.Line)
}

// FirstLine returns the text before the first newline, without a trailing CR.
func FirstLine(out string) string {
	line, _, _ := strings.Cut(out, "\n")
	return strings.TrimSuffix(line, "\r")
}

// ExtractVersion returns the first version triple in line.
func ExtractVersion(tool, line string) (string, error) {
	m := reVersion.FindStringSubmatch(line)
	if m == nil {
		return "", &VersionError{Tool: tool, Line: line}
	}
	return m[1], nil
}
