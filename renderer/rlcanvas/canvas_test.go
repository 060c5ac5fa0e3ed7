package rlcanvas

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/ambient/renderer"
)

// stubTextures swaps the raylib texture calls for fakes that never touch GL.
func stubTextures(t *testing.T, valid bool) (loads, unloads *int) {
	t.Helper()
	loads, unloads = new(int), new(int)
	origLoad, origUnload, origValid := loadRenderTexture, unloadRenderTexture, renderTextureValid
	t.Cleanup(func() {
		loadRenderTexture, unloadRenderTexture, renderTextureValid = origLoad, origUnload, origValid
	})
	loadRenderTexture = func(w, h int32) rl.RenderTexture2D {
		*loads++
		return rl.RenderTexture2D{}
	}
	unloadRenderTexture = func(rl.RenderTexture2D) { *unloads++ }
	renderTextureValid = func(rl.RenderTexture2D) bool { return valid }
	return loads, unloads
}

func TestNewFailsWithoutTexture(t *testing.T) {
	loads, unloads := stubTextures(t, false)

	c, err := New(640, 480, renderer.Paint{Alpha: 1})
	if !errors.Is(err, ErrTexture) {
		t.Fatalf("New error = %v, want ErrTexture", err)
	}
	if c != nil {
		t.Error("New should not return a canvas without a texture")
	}
	if *loads != 1 || *unloads != 0 {
		t.Errorf("loads = %d, unloads = %d; want 1, 0", *loads, *unloads)
	}
}

func TestResizeKeepsOldTextureOnFailure(t *testing.T) {
	_, unloads := stubTextures(t, false)

	c := &Canvas{w: 640, h: 480, loaded: true}
	c.Resize(800, 600)

	if w, h := c.Size(); w != 640 || h != 480 {
		t.Errorf("size = %dx%d, want 640x480 kept", w, h)
	}
	if !c.loaded || *unloads != 0 {
		t.Errorf("old texture released: loaded = %v, unloads = %d", c.loaded, *unloads)
	}
}
