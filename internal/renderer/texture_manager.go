package renderer

import (
	"image"
	"image/draw"
	"sync"

	"GopherView/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// TextureStats provides debugging and profiling information
type TextureStats struct {
	TotalTextures  int
	CacheHits      int
	CacheMisses    int
	ActiveTextures int
}

// TextureManager caches GPU textures by key and frees them once the last
// mesh referencing them is released. Keys are "<model source>#<image index>"
// for glTF images, so meshes sharing an image share one texture.
type TextureManager struct {
	textureCache    map[string]uint32 // key -> OpenGL texture ID
	textureRefCount map[uint32]int    // texture ID -> reference count
	textureKeys     map[uint32]string // texture ID -> key
	mu              sync.RWMutex
	stats           TextureStats

	upload func(rgba *image.RGBA) uint32
	free   func(textureID uint32)
}

// NewTextureManager creates a texture manager backed by OpenGL.
func NewTextureManager() *TextureManager {
	return newTextureManager(uploadRGBA, func(id uint32) { gl.DeleteTextures(1, &id) })
}

func newTextureManager(upload func(*image.RGBA) uint32, free func(uint32)) *TextureManager {
	return &TextureManager{
		textureCache:    make(map[string]uint32),
		textureRefCount: make(map[uint32]int),
		textureKeys:     make(map[uint32]string),
		upload:          upload,
		free:            free,
	}
}

// CreateTextureFromImage uploads img under key, or returns the cached texture
// for key. Either way the reference count is incremented.
func (tm *TextureManager) CreateTextureFromImage(img image.Image, key string) uint32 {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if textureID, exists := tm.textureCache[key]; exists {
		tm.textureRefCount[textureID]++
		tm.stats.CacheHits++
		logger.Log.Debug("Texture cache hit",
			zap.String("key", key),
			zap.Uint32("textureID", textureID),
			zap.Int("refCount", tm.textureRefCount[textureID]))
		return textureID
	}
	tm.stats.CacheMisses++

	textureID := tm.upload(toRGBA(img))

	tm.textureCache[key] = textureID
	tm.textureRefCount[textureID] = 1
	tm.textureKeys[textureID] = key
	tm.stats.TotalTextures++

	logger.Log.Debug("Texture created from image",
		zap.String("key", key),
		zap.Uint32("textureID", textureID),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return textureID
}

// ReleaseTexture decrements reference count and frees texture if count reaches 0
func (tm *TextureManager) ReleaseTexture(textureID uint32) {
	if textureID == 0 {
		return
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	refCount, exists := tm.textureRefCount[textureID]
	if !exists {
		logger.Log.Warn("Attempted to release unknown texture",
			zap.Uint32("textureID", textureID))
		return
	}

	refCount--
	tm.textureRefCount[textureID] = refCount
	if refCount > 0 {
		return
	}

	tm.free(textureID)
	key := tm.textureKeys[textureID]
	delete(tm.textureCache, key)
	delete(tm.textureRefCount, textureID)
	delete(tm.textureKeys, textureID)

	logger.Log.Debug("Texture freed",
		zap.Uint32("textureID", textureID),
		zap.String("key", key))
}

// AcquireModelTextures uploads or reuses the base color texture of every
// textured mesh, taking one reference per mesh.
func (tm *TextureManager) AcquireModelTextures(model *Model) {
	for _, mesh := range model.Meshes {
		if mat := mesh.Material; mat != nil && mat.Texture != nil {
			mat.TextureID = tm.CreateTextureFromImage(mat.Texture, mat.TextureKey)
		}
	}
}

// ReleaseModelTextures drops the references taken by AcquireModelTextures.
// Meshes may share a material, so IDs are cleared only after every mesh
// has released its reference.
func (tm *TextureManager) ReleaseModelTextures(model *Model) {
	for _, mesh := range model.Meshes {
		if mat := mesh.Material; mat != nil && mat.TextureID != 0 {
			tm.ReleaseTexture(mat.TextureID)
		}
	}
	for _, mesh := range model.Meshes {
		if mesh.Material != nil {
			mesh.Material.TextureID = 0
		}
	}
}

// GetStats returns current texture manager statistics
func (tm *TextureManager) GetStats() TextureStats {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	stats := tm.stats
	stats.ActiveTextures = len(tm.textureRefCount)
	return stats
}

// LogStats logs current texture statistics
func (tm *TextureManager) LogStats() {
	stats := tm.GetStats()
	hitRate := 0.0
	if lookups := stats.CacheHits + stats.CacheMisses; lookups > 0 {
		hitRate = float64(stats.CacheHits) / float64(lookups)
	}
	logger.Log.Info("Texture Manager Stats",
		zap.Int("totalTextures", stats.TotalTextures),
		zap.Int("activeTextures", stats.ActiveTextures),
		zap.Int("cacheHits", stats.CacheHits),
		zap.Int("cacheMisses", stats.CacheMisses),
		zap.Float64("hitRate", hitRate))
}

// Clear releases all textures regardless of their reference counts.
func (tm *TextureManager) Clear() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for textureID := range tm.textureRefCount {
		tm.free(textureID)
	}

	tm.textureCache = make(map[string]uint32)
	tm.textureRefCount = make(map[uint32]int)
	tm.textureKeys = make(map[uint32]string)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == rgba.Rect.Dx()*4 {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func uploadRGBA(rgba *image.RGBA) uint32 {
	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	return textureID
}
