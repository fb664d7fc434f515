package texture

import (
	"image"
	"sync"

	"SceneGL/internal/logger"

	"go.uber.org/zap"
)

// Backend uploads decoded images to the GPU. Handles are never 0.
type Backend interface {
	Upload(img *image.RGBA) (uint32, error)
	Delete(id uint32)
}

// Stats provides debugging and profiling information.
type Stats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

// Manager caches textures by path and frees them when the last reference
// is released.
type Manager struct {
	backend  Backend
	mu       sync.Mutex
	cache    map[string]uint32 // path -> texture ID
	refCount map[uint32]int    // texture ID -> reference count
	paths    map[uint32]string // texture ID -> path
	stats    Stats
}

// NewManager creates a manager uploading through backend.
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend:  backend,
		cache:    make(map[string]uint32),
		refCount: make(map[uint32]int),
		paths:    make(map[uint32]string),
	}
}

// Load returns the texture for path, decoding and uploading it on first
// use. Each call takes a reference.
func (tm *Manager) Load(path string) (uint32, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if id, ok := tm.cache[path]; ok {
		tm.refCount[id]++
		tm.stats.CacheHits++
		logger.Log.Debug("Texture cache hit",
			zap.String("path", path),
			zap.Uint32("textureID", id),
			zap.Int("refCount", tm.refCount[id]))
		return id, nil
	}

	tm.stats.CacheMisses++
	img, err := DecodeFile(path)
	if err != nil {
		return 0, err
	}
	id, err := tm.store(path, img)
	if err != nil {
		return 0, err
	}
	logger.Log.Info("Texture loaded and cached",
		zap.String("path", path),
		zap.Uint32("textureID", id),
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", img.Rect.Dy()))
	return id, nil
}

// FromImage uploads an in-memory image cached under name, used for the
// built-in fallback textures.
func (tm *Manager) FromImage(name string, img *image.RGBA) (uint32, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if id, ok := tm.cache[name]; ok {
		tm.refCount[id]++
		tm.stats.CacheHits++
		return id, nil
	}
	tm.stats.CacheMisses++
	return tm.store(name, img)
}

func (tm *Manager) store(key string, img *image.RGBA) (uint32, error) {
	id, err := tm.backend.Upload(img)
	if err != nil {
		return 0, err
	}
	tm.cache[key] = id
	tm.refCount[id] = 1
	tm.paths[id] = key
	tm.stats.TotalTextures++
	return id, nil
}

// AddReference takes one more reference on a loaded texture.
func (tm *Manager) AddReference(id uint32) {
	if id == 0 {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, ok := tm.refCount[id]; ok {
		tm.refCount[id]++
	}
}

// Release drops a reference and deletes the texture with the last one.
func (tm *Manager) Release(id uint32) {
	if id == 0 {
		return
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()

	refs, ok := tm.refCount[id]
	if !ok {
		logger.Log.Warn("Attempted to release unknown texture", zap.Uint32("textureID", id))
		return
	}
	refs--
	if refs > 0 {
		tm.refCount[id] = refs
		return
	}

	tm.backend.Delete(id)
	path := tm.paths[id]
	delete(tm.cache, path)
	delete(tm.refCount, id)
	delete(tm.paths, id)
	logger.Log.Debug("Texture freed", zap.Uint32("textureID", id), zap.String("path", path))
}

// RefCount returns the number of live references on a texture.
func (tm *Manager) RefCount(id uint32) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.refCount[id]
}

// Stats returns the current counters.
func (tm *Manager) Stats() Stats {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	s := tm.stats
	s.ActiveTextures = len(tm.refCount)
	return s
}

// Clear deletes every texture regardless of references.
func (tm *Manager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for id := range tm.refCount {
		tm.backend.Delete(id)
	}
	tm.cache = make(map[string]uint32)
	tm.refCount = make(map[uint32]int)
	tm.paths = make(map[uint32]string)
	logger.Log.Info("Texture manager cleared")
}
