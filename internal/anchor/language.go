package anchor

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// PlainText is reported when no language can be detected.
const PlainText = "plaintext"

// editorIDs maps linguist names to editor language identifiers where lower-casing is not enough.
var editorIDs = map[string]string{
	"C#":          "csharp",
	"C++":         "cpp",
	"Shell":       "shellscript",
	"HCL":         "terraform",
	"TSX":         "typescriptreact",
	"Objective-C": "objective-c",
	"Vim Script":  "vim",
	"Go Module":   "go.mod",
}

// React flavours share their linguist name with the plain language.
var reactExts = map[string]string{
	".jsx": "javascriptreact",
	".tsx": "typescriptreact",
}

// DetectLanguage returns an editor language identifier for path. content breaks ties between
// languages sharing an extension and is used for shebangs and modelines; it may be nil.
func DetectLanguage(path string, content []byte) string {
	base := filepath.Base(path)
	if id, ok := reactExts[strings.ToLower(filepath.Ext(base))]; ok {
		return id
	}

	lang := enry.GetLanguage(base, content)
	if lang == "" {
		return PlainText
	}
	if id, ok := editorIDs[lang]; ok {
		return id
	}
	return strings.ReplaceAll(strings.ToLower(lang), " ", "-")
}
