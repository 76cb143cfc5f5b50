package strutil

import "strings"

// SplitMessage splits text into chunks not exceeding maxLength, preferring
// line boundaries. A single line longer than maxLength is split mid-line.
func SplitMessage(text string, maxLength int) []string {
	if len(text) <= maxLength {
		return []string{text}
	}
	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(text, "\n") {
		for len(line) > maxLength {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, line[:maxLength])
			line = line[maxLength:]
		}
		if current.Len()+len(line)+1 > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// FirstURL returns the first whitespace-separated token of text that looks
// like an http(s) URL, or "".
func FirstURL(text string) string {
	for _, field := range strings.Fields(text) {
		if strings.Contains(field, "http://") || strings.Contains(field, "https://") {
			return field
		}
	}
	return ""
}
