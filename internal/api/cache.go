package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
)

// Cache stores response bodies and their ETags so repeat GETs can send
// If-None-Match and serve a 304 from disk. Bodies live as individual
// files under responses/, the key-to-ETag index in etags.json.
//
// Writes are best effort: a failed cache write never fails the request.
type Cache struct {
	dir string
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key derives the cache key for a request. The API key is part of the
// hash so switching credentials or profiles never serves another
// identity's cached data.
func (c *Cache) Key(url, apiKey string) string {
	h := sha256.Sum256([]byte(url + "\n" + apiKey))
	return hex.EncodeToString(h[:])
}

func (c *Cache) etagsPath() string {
	return filepath.Join(c.dir, "etags.json")
}

func (c *Cache) bodyPath(key string) string {
	return filepath.Join(c.dir, "responses", key+".body")
}

// loadETags reads the ETag index. Missing or corrupt files yield an
// empty index.
func (c *Cache) loadETags() map[string]string {
	etags := make(map[string]string)
	data, err := os.ReadFile(c.etagsPath())
	if err != nil {
		return etags
	}
	if err := json.Unmarshal(data, &etags); err != nil {
		return make(map[string]string)
	}
	return etags
}

func (c *Cache) saveETags(etags map[string]string) error {
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(etags, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.etagsPath(), data, 0600)
}

// GetETag returns the stored ETag for key, or "".
func (c *Cache) GetETag(key string) string {
	return c.loadETags()[key]
}

// GetBody returns the cached body for key, or nil.
func (c *Cache) GetBody(key string) []byte {
	data, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		return nil
	}
	return data
}

// Set stores a body and its ETag for key. The body is written before
// the index entry so a stored ETag always has a body behind it.
func (c *Cache) Set(key string, body []byte, etag string) error {
	if err := os.MkdirAll(filepath.Join(c.dir, "responses"), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(c.bodyPath(key), body, 0600); err != nil {
		return err
	}

	etags := c.loadETags()
	etags[key] = etag
	return c.saveETags(etags)
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) error {
	etags := c.loadETags()
	if _, ok := etags[key]; ok {
		delete(etags, key)
		if err := c.saveETags(etags); err != nil {
			return err
		}
	}

	err := os.Remove(c.bodyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all cached responses and the ETag index.
func (c *Cache) Clear() error {
	if err := os.RemoveAll(filepath.Join(c.dir, "responses")); err != nil {
		return err
	}
	err := os.Remove(c.etagsPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
