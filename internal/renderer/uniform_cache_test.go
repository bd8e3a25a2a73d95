package renderer

import (
	"testing"
)

func TestNewUniformCache(t *testing.T) {
	cache := NewUniformCache(7)

	if cache == nil {
		t.Fatal("NewUniformCache returned nil")
	}

	if cache.locations == nil {
		t.Error("locations map should be initialized")
	}

	if cache.program != 7 {
		t.Errorf("Expected program 7, got %d", cache.program)
	}
}

func TestUniformCacheReturnsCachedLocation(t *testing.T) {
	cache := NewUniformCache(0)
	cache.locations["pointLights[0].position"] = 5

	// A cached name must not reach the GL driver.
	if loc := cache.GetLocation("pointLights[0].position"); loc != 5 {
		t.Errorf("Expected cached location 5, got %d", loc)
	}
}

func TestUniformCacheClear(t *testing.T) {
	cache := NewUniformCache(0)
	cache.locations["test"] = 5

	cache.Clear()

	if len(cache.locations) != 0 {
		t.Error("Clear should empty the cache")
	}
}
