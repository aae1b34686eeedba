package extract

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/refaudit/internal/diff"
)

// resultCacheCapacity bounds the number of cached per-file extractions.
const resultCacheCapacity = 8192

// ResultCache memoizes successful per-file extractions, keyed by language
// and content hash. Extraction is pure, so identical content always yields
// identical definitions; the cache only skips repeated work (the same file
// content on both sides of a comparison, or unchanged files across watch
// iterations). Failed extractions are never cached.
type ResultCache struct {
	cache otter.Cache[string, []diff.Definition]
}

// NewResultCache builds an empty cache.
func NewResultCache() (*ResultCache, error) {
	cache, err := otter.MustBuilder[string, []diff.Definition](resultCacheCapacity).Build()
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: cache}, nil
}

// Get returns the cached definitions for (lang, content), if present.
func (c *ResultCache) Get(lang string, content []byte) ([]diff.Definition, bool) {
	return c.cache.Get(cacheKey(lang, content))
}

// Put stores the definitions extracted from (lang, content).
func (c *ResultCache) Put(lang string, content []byte, defs []diff.Definition) {
	c.cache.Set(cacheKey(lang, content), defs)
}

// Close releases the cache's resources.
func (c *ResultCache) Close() {
	c.cache.Close()
}

func cacheKey(lang string, content []byte) string {
	sum := sha256.Sum256(content)
	return lang + ":" + hex.EncodeToString(sum[:])
}
