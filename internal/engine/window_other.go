//go:build !windows

package engine

import "github.com/go-gl/glfw/v3.3/glfw"

// tintTitleBar is a no-op outside Windows; other platforms theme their own decorations.
func tintTitleBar(*glfw.Window, float32, float32, float32) {}
