//go:build windows

package engine

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	DWMWA_USE_IMMERSIVE_DARK_MODE = 20
	DWMWA_BORDER_COLOR            = 34
	DWMWA_CAPTION_COLOR           = 35
)

// tintTitleBar paints the caption and border in the scene background color,
// switching to dark mode text on dark backgrounds.
func tintTitleBar(window *glfw.Window, r, g, b float32) {
	win32 := window.GetWin32Window()
	if win32 == nil {
		return
	}
	hwnd := unsafe.Pointer(win32)

	var darkMode int32
	if luminance(r, g, b) < 0.5 {
		darkMode = 1
	}
	setWindowAttribute(hwnd, DWMWA_USE_IMMERSIVE_DARK_MODE, unsafe.Pointer(&darkMode), unsafe.Sizeof(darkMode))

	// COLORREF is 0x00BBGGRR.
	colorRef := uint32(uint8(r*255)) | uint32(uint8(g*255))<<8 | uint32(uint8(b*255))<<16
	setWindowAttribute(hwnd, DWMWA_BORDER_COLOR, unsafe.Pointer(&colorRef), unsafe.Sizeof(colorRef))
	setWindowAttribute(hwnd, DWMWA_CAPTION_COLOR, unsafe.Pointer(&colorRef), unsafe.Sizeof(colorRef))
}

func setWindowAttribute(hwnd unsafe.Pointer, attribute uintptr, value unsafe.Pointer, size uintptr) {
	procDwmSetWindowAttribute.Call(uintptr(hwnd), attribute, uintptr(value), size)
}
