package anchor

import (
	"os"
	"strings"
)

// File is a text file split into lines without their terminators.
type File struct {
	Path     string
	Lines    []string
	Language string
}

// ReadFile loads path and splits it into lines. CRLF endings are treated as LF.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{
		Path:     path,
		Lines:    SplitLines(string(data)),
		Language: DetectLanguage(path, data),
	}, nil
}

// SplitLines splits text the way editors count lines: a trailing newline opens an empty last line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Line returns the text of the 1-based line n.
func (f *File) Line(n int) (string, bool) {
	if f == nil || n < 1 || n > len(f.Lines) {
		return "", false
	}
	return f.Lines[n-1], true
}
