package review

import "strings"

// fileMarker introduces each per-file section of a unified diff.
const fileMarker = "diff --git"

// TruncationSuffix is appended when the assembled diff is cut at the cap.
const TruncationSuffix = "\n...(truncated)"

// ExtractFileSection returns the section of a unified diff covering
// filename: from the first marker line containing the filename up to (but
// excluding) the next marker line, or the end of the document. Returns ""
// when no marker line matches.
func ExtractFileSection(diff, filename string) string {
	lines := strings.Split(diff, "\n")

	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, fileMarker) && strings.Contains(line, filename) {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], fileMarker) {
			end = i
			break
		}
	}

	return strings.Join(lines[start:end], "\n")
}

// DiffAssembler concatenates per-file diff sections, separated by a blank
// line, into a single buffer with a hard length cap. Once the cap is hit the
// buffer is cut exactly at the cap, the truncation suffix is appended, and
// further sections are refused.
type DiffAssembler struct {
	maxLen    int
	buf       string
	truncated bool
}

func NewDiffAssembler(maxLen int) *DiffAssembler {
	return &DiffAssembler{maxLen: maxLen}
}

// Append adds a section and reports whether the assembler can take more.
func (a *DiffAssembler) Append(section string) bool {
	if a.truncated {
		return false
	}
	a.buf += section + "\n\n"
	if len(a.buf) > a.maxLen {
		a.buf = a.buf[:a.maxLen] + TruncationSuffix
		a.truncated = true
		return false
	}
	return true
}

func (a *DiffAssembler) String() string {
	return a.buf
}

func (a *DiffAssembler) Truncated() bool {
	return a.truncated
}
