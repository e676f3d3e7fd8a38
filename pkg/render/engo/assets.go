// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-roadball/pkg/entity"
)

// Asset sizes in pixels
const (
	TireSize = 9
	FontSize = 16
	fontURL  = "goregular.ttf"
)

// AssetManager builds the textures and font the renderer draws with. The
// textures are generated, so nothing is read from disk.
type AssetManager struct {
	pixel common.Drawable
	tire  common.Drawable
	font  *common.Font

	palette map[string]color.Color
}

// NewAssetManager creates an asset manager with the default palette.
func NewAssetManager() *AssetManager {
	return &AssetManager{palette: DefaultPalette()}
}

// DefaultPalette maps object kinds to colours.
func DefaultPalette() map[string]color.Color {
	return map[string]color.Color{
		entity.KindBall.String():     color.RGBA{240, 240, 240, 255},
		entity.KindCar.String():      color.RGBA{0, 200, 255, 255},
		entity.KindGround.String():   color.RGBA{140, 110, 60, 255},
		entity.KindCustom.String():   color.RGBA{160, 160, 160, 255},
		entity.KindObstacle.String(): color.RGBA{230, 40, 40, 255},
		entity.KindGoal.String():     color.RGBA{40, 210, 80, 255},
	}
}

// LoadAssets creates the textures and font. It needs an OpenGL context.
func (am *AssetManager) LoadAssets() error {
	am.pixel = am.createSprite(1, 1, [][]int{{1}})
	am.tire = am.createSprite(TireSize, TireSize, circlePattern(TireSize))

	if err := engo.Files.LoadReaderData(fontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}
	am.font = &common.Font{URL: fontURL, FG: color.White, Size: FontSize}
	if err := am.font.CreatePreloaded(); err != nil {
		return fmt.Errorf("failed to create font: %w", err)
	}
	return nil
}

// KindColor returns the colour for an object kind. Hit targets are drawn
// brighter.
func (am *AssetManager) KindColor(kind string, hit bool) color.Color {
	c, ok := am.palette[kind]
	if !ok {
		return color.White
	}
	if hit {
		return brighten(c)
	}
	return c
}

func brighten(c color.Color) color.Color {
	r, g, b, a := c.RGBA()
	lift := func(v uint32) uint8 {
		v8 := v >> 8
		return uint8(v8 + (255-v8)/2)
	}
	return color.RGBA{lift(r), lift(g), lift(b), uint8(a >> 8)}
}

// circlePattern returns a filled disc of the given diameter.
func circlePattern(size int) [][]int {
	pattern := make([][]int, size)
	center := float64(size-1) / 2
	radius := float64(size) / 2
	for y := range pattern {
		pattern[y] = make([]int, size)
		for x := range pattern[y] {
			dx, dy := float64(x)-center, float64(y)-center
			if dx*dx+dy*dy <= radius*radius {
				pattern[y][x] = 1
			}
		}
	}
	return pattern
}

// createSprite creates a white texture from a 0/1 pattern.
func (am *AssetManager) createSprite(width, height int, pattern [][]int) common.Drawable {
	img := am.createBaseImage(width, height)
	am.drawPatternOnImage(img, pattern, width, height)
	return am.convertToEngoTexture(img)
}

func (am *AssetManager) createBaseImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{0, 0, 0, 0}}, image.Point{}, draw.Src)
	return img
}

func (am *AssetManager) drawPatternOnImage(img *image.RGBA, pattern [][]int, width, height int) {
	for y, row := range pattern {
		if y >= height {
			break
		}
		for x, pixel := range row {
			if x >= width {
				break
			}
			if pixel == 1 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			}
		}
	}
}

func (am *AssetManager) convertToEngoTexture(img *image.RGBA) common.Drawable {
	bounds := img.Bounds()
	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)
	return common.NewTextureSingle(common.NewImageObject(nrgba))
}

// Pixel returns the 1×1 texture lines are stretched from.
func (am *AssetManager) Pixel() common.Drawable {
	return am.pixel
}

// Tire returns the tire disc texture.
func (am *AssetManager) Tire() common.Drawable {
	return am.tire
}

// Font returns the HUD font, or nil before LoadAssets.
func (am *AssetManager) Font() *common.Font {
	return am.font
}
