package templates

import "strings"

// Insert adds lines below the anchor line of content. The lines go after the
// block of non-blank, non-heading lines that directly follows the anchor, so
// repeated inserts keep their order. Without an anchor (or when it is not
// found) the lines go below the first line of content. Content using CRLF
// line endings keeps them.
func Insert(content []byte, anchor string, lines ...string) []byte {
	if len(lines) == 0 {
		return content
	}
	if len(content) == 0 {
		return []byte(strings.Join(lines, "\n") + "\n")
	}

	eol := "\n"
	text := string(content)
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}

	rows := strings.Split(text, "\n")
	pos := 1
	if idx := anchorIndex(rows, anchor); idx >= 0 {
		pos = idx + 1
		for pos < len(rows) && strings.TrimSpace(rows[pos]) != "" && !isHeading(rows[pos]) {
			pos++
		}
	}
	if pos > len(rows) {
		pos = len(rows)
	}

	out := make([]string, 0, len(rows)+len(lines))
	out = append(out, rows[:pos]...)
	out = append(out, lines...)
	out = append(out, rows[pos:]...)
	joined := strings.Join(out, eol)
	if !strings.HasSuffix(joined, eol) {
		joined += eol
	}
	return []byte(joined)
}

func anchorIndex(rows []string, anchor string) int {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		return -1
	}
	for i, r := range rows {
		if strings.TrimSpace(r) == anchor {
			return i
		}
	}
	return -1
}

func isHeading(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
