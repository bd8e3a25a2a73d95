package renderer

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Environment is an equirectangular reflection map prefiltered into a
// roughness chain: level 0 is sharp, every further level is half the size
// and blurrier. Level i is uploaded as mip level i.
type Environment struct {
	Name       string
	Levels     []*image.RGBA
	Irradiance mgl32.Vec3 // Average color of the blurriest level
	TextureID  uint32
}

// LoadEnvironment decodes the image at path and prefilters it.
func LoadEnvironment(ctx context.Context, path string, baseWidth, levels int) (*Environment, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open environment %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env, err := PrefilterEnvironment(ctx, img, baseWidth, levels)
	if err != nil {
		return nil, fmt.Errorf("prefilter environment %s: %w", path, err)
	}
	env.Name = filepath.Base(path)
	return env, nil
}

// PrefilterEnvironment resamples src to baseWidth x baseWidth/2 and builds up to
// levels blurred levels. The chain stops early once a level would be narrower
// than two pixels. Levels not yet started when ctx is done are skipped and
// ctx.Err() is returned.
func PrefilterEnvironment(ctx context.Context, src image.Image, baseWidth, levels int) (*Environment, error) {
	if baseWidth < 2 {
		return nil, fmt.Errorf("base width must be at least 2, got %d", baseWidth)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("empty source image")
	}
	if levels < 1 {
		levels = 1
	}
	for levels > 1 && baseWidth>>(levels-1) < 2 {
		levels--
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := transform.Resize(src, baseWidth, baseWidth/2, transform.Linear)
	env := &Environment{Levels: make([]*image.RGBA, levels)}
	env.Levels[0] = base

	pool := pond.NewPool(runtime.NumCPU(), pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for i := 1; i < levels; i++ {
		i := i
		group.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			w, h := LevelSize(baseWidth, i)
			level := transform.Resize(base, w, h, transform.Box)
			env.Levels[i] = blur.Gaussian(level, 0.5+float64(i)*0.75)
		})
	}
	err := group.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	env.Irradiance = averageColor(env.Levels[levels-1])
	return env, nil
}

// LevelSize is the pixel size of mip level i of a chain with the given base width.
func LevelSize(baseWidth, level int) (w, h int) {
	w = max(baseWidth>>level, 1)
	h = max((baseWidth/2)>>level, 1)
	return w, h
}

func averageColor(img *image.RGBA) mgl32.Vec3 {
	var r, g, b float64
	b0 := img.Bounds()
	n := 0
	for y := b0.Min.Y; y < b0.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b0.Min.X, y):]
		for x := 0; x < b0.Dx(); x++ {
			r += float64(row[x*4])
			g += float64(row[x*4+1])
			b += float64(row[x*4+2])
			n++
		}
	}
	if n == 0 {
		return mgl32.Vec3{}
	}
	scale := 1.0 / (255.0 * float64(n))
	return mgl32.Vec3{float32(r * scale), float32(g * scale), float32(b * scale)}
}
