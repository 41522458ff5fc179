package walker

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

var extensionToLanguage = map[string]string{
	".html":     "HTML",
	".htm":      "HTML",
	".xhtml":    "HTML",
	".css":      "CSS",
	".scss":     "CSS",
	".sass":     "CSS",
	".less":     "CSS",
	".js":       "JavaScript",
	".mjs":      "JavaScript",
	".cjs":      "JavaScript",
	".jsx":      "JavaScript",
	".ts":       "TypeScript",
	".tsx":      "TypeScript",
	".json":     "JSON",
	".md":       "Markdown",
	".markdown": "Markdown",
	".svg":      "SVG",
	".xml":      "XML",
	".yaml":     "YAML",
	".yml":      "YAML",
	".txt":      "Text",
	".vue":      "Vue",
	".svelte":   "Svelte",
}

// DetectLanguage names the language of a file from its extension, or
// returns "unknown".
func DetectLanguage(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if lang, ok := extensionToLanguage[ext]; ok {
		return lang
	}
	return "unknown"
}

// Summarize counts entries per language, most common first, e.g.
// "3 HTML, 1 CSS, 1 other". Unrecognised files are counted last as "other".
func Summarize(entries []Entry) string {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Language]++
	}
	langs := make([]string, 0, len(counts))
	for lang := range counts {
		if lang != "unknown" {
			langs = append(langs, lang)
		}
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})

	parts := make([]string, 0, len(counts))
	for _, lang := range langs {
		parts = append(parts, fmt.Sprintf("%d %s", counts[lang], lang))
	}
	if n := counts["unknown"]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d other", n))
	}
	return strings.Join(parts, ", ")
}
