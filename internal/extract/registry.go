package extract

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// enryNames maps enry/linguist language names onto our extractor names.
var enryNames = map[string]string{
	"Python":     "python",
	"TypeScript": "typescript",
	"TSX":        "tsx",
	"JavaScript": "javascript",
	"JSX":        "javascript",
}

// Registry routes files to extractors. Extension lookup is authoritative
// for the registered extractors; content-based detection via enry is the
// fallback for unknown extensions (scripts without one, generated files).
type Registry struct {
	byLanguage  map[string]Extractor
	byExtension map[string]Extractor
}

// NewRegistry builds a registry from the given extractors.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{
		byLanguage:  make(map[string]Extractor),
		byExtension: make(map[string]Extractor),
	}
	for _, e := range extractors {
		r.byLanguage[e.Language()] = e
		for _, ext := range e.Extensions() {
			r.byExtension[ext] = e
		}
	}
	return r
}

// Languages returns the registered language names.
func (r *Registry) Languages() []string {
	langs := make([]string, 0, len(r.byLanguage))
	for lang := range r.byLanguage {
		langs = append(langs, lang)
	}
	return langs
}

// ForLanguage returns the extractor registered under lang, if any.
func (r *Registry) ForLanguage(lang string) (Extractor, bool) {
	e, ok := r.byLanguage[lang]
	return e, ok
}

// ForFile picks the extractor for a path, consulting content-based
// language detection when the extension is not registered. Returns false
// for unsupported files, which callers skip silently.
func (r *Registry) ForFile(path string, content []byte) (Extractor, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if e, ok := r.byExtension[ext]; ok {
		return e, true
	}

	detected := enry.GetLanguage(filepath.Base(path), content)
	if lang, ok := enryNames[detected]; ok {
		if e, ok := r.byLanguage[lang]; ok {
			return e, true
		}
	}
	return nil, false
}
