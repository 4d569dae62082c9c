// Package lang normalizes AtCoder language labels into stable family
// names and maps families to source file extensions.
package lang

import "strings"

// fallbackExtension is used for language families without a mapping.
const fallbackExtension = "txt"

// extensions maps a normalized language family to its file extension.
var extensions = map[string]string{
	"awk":        "awk",
	"bash":       "sh",
	"c":          "c",
	"clojure":    "clj",
	"cpp":        "cpp",
	"crystal":    "cr",
	"csharp":     "cs",
	"d":          "d",
	"dart":       "dart",
	"elixir":     "ex",
	"fortran":    "f90",
	"fsharp":     "fs",
	"go":         "go",
	"haskell":    "hs",
	"java":       "java",
	"javascript": "js",
	"julia":      "jl",
	"kotlin":     "kt",
	"lua":        "lua",
	"nim":        "nim",
	"ocaml":      "ml",
	"perl":       "pl",
	"php":        "php",
	"pypy":       "py",
	"python":     "py",
	"raku":       "raku",
	"ruby":       "rb",
	"rust":       "rs",
	"scala":      "scala",
	"swift":      "swift",
	"text":       "txt",
	"typescript": "ts",
	"zsh":        "sh",
}

// symbolAliases rewrites language names whose canonical spelling uses
// characters that do not belong in a filename.
var symbolAliases = []struct{ from, to string }{
	{"c++", "cpp"},
	{"c#", "csharp"},
	{"f#", "fsharp"},
	{"objective-c", "objectivec"},
}

// Normalize reduces an AtCoder language label to its family name:
// "C++14 (GCC 5.4.1)" and "C++ (GCC 9.2.1)" both become "cpp",
// "Python3 (3.4.3)" and "Python (3.8.2)" both become "python".
// Two labels with the same family share one output file, so the
// family is also the language component of the selection key.
func Normalize(language string) string {
	name := language

	// Drop the toolchain/version parenthetical.
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	name = strings.ToLower(strings.TrimSpace(name))

	for _, a := range symbolAliases {
		if strings.HasPrefix(name, a.from) {
			name = a.to + name[len(a.from):]
			break
		}
	}

	// Strip version digits stuck to the name (python3, pypy2, cpp14)
	// and anything that cannot appear in a filename.
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name = strings.TrimRight(b.String(), "0123456789")

	return name
}

// Extension returns the file extension for a normalized family name,
// falling back to "txt" for families without a mapping.
func Extension(family string) string {
	if ext, ok := extensions[family]; ok {
		return ext
	}
	return fallbackExtension
}

// Filename returns the output file name for a raw language label.
func Filename(language string) string {
	family := Normalize(language)
	return family + "." + Extension(family)
}
