package preview

import (
	"container/list"
	"sync"
	"time"

	"github.com/justyntemme/glance/internal/debug"
)

// ThumbnailCache is an LRU of decoded thumbnails. Entries are keyed by path,
// size and modification time so an edited file is decoded again.
type ThumbnailCache struct {
	mu      sync.Mutex
	cache   map[cacheKey]*list.Element
	lru     *list.List // front = most recent
	maxSize int
}

type cacheKey struct {
	path    string
	size    uint64
	modTime int64
}

type thumbnailEntry struct {
	key       cacheKey
	thumbnail *Thumbnail
}

// NewThumbnailCache creates a cache holding at most maxEntries thumbnails.
// maxEntries <= 0 returns nil, and a nil cache never stores anything.
func NewThumbnailCache(maxEntries int) *ThumbnailCache {
	if maxEntries <= 0 {
		return nil
	}
	return &ThumbnailCache{
		cache:   make(map[cacheKey]*list.Element),
		lru:     list.New(),
		maxSize: maxEntries,
	}
}

func keyFor(path string, size uint64, modTime time.Time) cacheKey {
	return cacheKey{path: path, size: size, modTime: modTime.UnixNano()}
}

// Get returns the cached thumbnail for a file version.
func (tc *ThumbnailCache) Get(path string, size uint64, modTime time.Time) (*Thumbnail, bool) {
	if tc == nil {
		return nil, false
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()

	el, ok := tc.cache[keyFor(path, size, modTime)]
	if !ok {
		return nil, false
	}
	tc.lru.MoveToFront(el)
	return el.Value.(*thumbnailEntry).thumbnail, true
}

// Put stores a thumbnail, evicting the least recently used entries when
// the cache is full.
func (tc *ThumbnailCache) Put(path string, size uint64, modTime time.Time, thumb *Thumbnail) {
	if tc == nil || thumb == nil {
		return
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()

	key := keyFor(path, size, modTime)
	if el, ok := tc.cache[key]; ok {
		el.Value.(*thumbnailEntry).thumbnail = thumb
		tc.lru.MoveToFront(el)
		return
	}

	for tc.lru.Len() >= tc.maxSize {
		oldest := tc.lru.Back()
		if oldest == nil {
			break
		}
		old := oldest.Value.(*thumbnailEntry)
		delete(tc.cache, old.key)
		tc.lru.Remove(oldest)
		debug.Log(debug.PREVIEW, "ThumbnailCache: evicted %s", old.key.path)
	}

	tc.cache[key] = tc.lru.PushFront(&thumbnailEntry{key: key, thumbnail: thumb})
}

// Clear removes all entries from the cache.
func (tc *ThumbnailCache) Clear() {
	if tc == nil {
		return
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.cache = make(map[cacheKey]*list.Element)
	tc.lru = list.New()
}

// Len returns the current number of cached thumbnails.
func (tc *ThumbnailCache) Len() int {
	if tc == nil {
		return 0
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lru.Len()
}
