package models

import (
	"regexp"
	"strings"
)

// powerQueryIndicators are the pipe-stage markers of the PowerQuery mini
// language. A text that carries none of them is not scanned further.
var powerQueryIndicators = []string{
	"| filter(",
	"| filter ",
	"| columns",
	"| sort",
	"| group",
	"| limit",
}

var powerQueryPattern = regexp.MustCompile(`(?s)\| filter\([^)]+\)(?:\s*\|[^|]+)*`)

// DetectPowerQuery extracts an executable PowerQuery from assistant output.
// Queries may span several lines, one pipe stage per line; the scan collects
// every consecutive pipe-prefixed line, skipping blanks and stopping at the
// first prose line. The multi-line regexp is the fallback for queries wrapped
// inside prose on a single line.
func DetectPowerQuery(text string) string {
	if text == "" {
		return ""
	}
	found := false
	for _, indicator := range powerQueryIndicators {
		if strings.Contains(text, indicator) {
			found = true
			break
		}
	}
	if !found {
		return ""
	}

	var queryLines []string
	inQuery := false
scan:
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "| ") ||
			strings.HasPrefix(stripped, "|filter") ||
			strings.HasPrefix(stripped, "|group"):
			inQuery = true
			queryLines = append(queryLines, stripped)
		case inQuery && strings.HasPrefix(stripped, "|"):
			queryLines = append(queryLines, stripped)
		case inQuery && stripped == "":
			// blank lines inside a query block are tolerated
		case inQuery:
			break scan
		}
	}
	if len(queryLines) > 0 {
		return strings.Join(queryLines, "\n")
	}

	if m := powerQueryPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}
