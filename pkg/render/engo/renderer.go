// pkg/render/engo/renderer.go
package engo

import (
	"image/color"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/physics"
)

// LineWidth is the drawn thickness of object outlines in pixels.
const LineWidth = 2

// Sprite is one drawn quad in screen pixels. Rotation is in degrees,
// clockwise, about Position.
type Sprite struct {
	Position physics.Vector2D
	Width    float64
	Height   float64
	Rotation float64
	Color    color.Color
	Tire     bool
}

// spriteEntity is a pooled ECS entity reused across frames.
type spriteEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// EngoRenderer implements entity.Renderer by turning world lines into
// stretched pixel sprites drawn by engo's render system.
type EngoRenderer struct {
	renderSystem *common.RenderSystem
	assets       *AssetManager
	camera       *CameraSystem

	sprites []Sprite
	pool    []*spriteEntity
}

// NewEngoRenderer creates a renderer drawing through camera.
func NewEngoRenderer(assets *AssetManager, camera *CameraSystem) *EngoRenderer {
	if assets == nil {
		assets = NewAssetManager()
	}
	if camera == nil {
		camera = NewCameraSystem()
	}
	return &EngoRenderer{assets: assets, camera: camera}
}

// Initialize loads the assets and attaches the render system. It needs an
// OpenGL context.
func (r *EngoRenderer) Initialize(renderSystem *common.RenderSystem) error {
	if err := r.assets.LoadAssets(); err != nil {
		return err
	}
	r.renderSystem = renderSystem
	return nil
}

// Sprites returns the sprites collected since the last Clear.
func (r *EngoRenderer) Sprites() []Sprite {
	return r.sprites
}

// Clear implements entity.Renderer
func (r *EngoRenderer) Clear() {
	r.sprites = r.sprites[:0]
}

// Present implements entity.Renderer
func (r *EngoRenderer) Present() {
	r.flush()
}

// RenderBall implements entity.Renderer
func (r *EngoRenderer) RenderBall(ball entity.Ball) {
	r.addLines(ball.WorldLines(), r.assets.KindColor(entity.KindBall.String(), false))
}

// RenderCar implements entity.Renderer
func (r *EngoRenderer) RenderCar(car entity.Car) {
	r.addLines(car.WorldLines(), r.assets.KindColor(entity.KindCar.String(), false))
	for _, t := range car.WorldTires() {
		r.addTire(t)
	}
}

// RenderGround implements entity.Renderer
func (r *EngoRenderer) RenderGround(ground entity.Ground) {
	r.addLines(ground.WorldLines(), r.assets.KindColor(ground.Kind().String(), false))
}

// RenderTarget implements entity.Renderer
func (r *EngoRenderer) RenderTarget(target entity.Target) {
	r.addLines(target.WorldLines(), r.assets.KindColor(target.Kind().String(), target.Hit))
}

// DrawSnapshot draws a whole frame from a snapshot and points the camera
// at its view.
func (r *EngoRenderer) DrawSnapshot(s engine.Snapshot) {
	r.camera.SetTarget(s.Camera)
	r.Clear()
	for _, o := range s.Objects {
		r.addLines(o.Lines, r.assets.KindColor(o.Kind, o.Hit))
		for _, t := range o.Tires {
			r.addTire(t)
		}
	}
	r.Present()
}

// addLines appends one sprite per line: a pixel stretched from the start
// point along the line.
func (r *EngoRenderer) addLines(lines []physics.Line, c color.Color) {
	zoom := float64(r.camera.GetZoom())
	for _, l := range lines {
		d := l.Direction()
		r.sprites = append(r.sprites, Sprite{
			Position: r.camera.WorldToScreen(l.Start),
			Width:    l.Length() * zoom,
			Height:   LineWidth,
			Rotation: math.Atan2(d.Y, d.X) * 180 / math.Pi,
			Color:    c,
		})
	}
}

func (r *EngoRenderer) addTire(p physics.Vector2D) {
	size := TireSize * float64(r.camera.GetZoom())
	r.sprites = append(r.sprites, Sprite{
		Position: r.camera.WorldToScreen(p).Sub(physics.Vec(size/2, size/2)),
		Width:    size,
		Height:   size,
		Color:    r.assets.KindColor(entity.KindCar.String(), false),
		Tire:     true,
	})
}

// flush copies the sprites into pooled entities, hiding the spare ones.
// Without a render system it only keeps the sprite list.
func (r *EngoRenderer) flush() {
	if r.renderSystem == nil {
		return
	}
	for len(r.pool) < len(r.sprites) {
		e := &spriteEntity{BasicEntity: ecs.NewBasic()}
		e.RenderComponent = common.RenderComponent{Drawable: r.assets.Pixel()}
		r.renderSystem.Add(&e.BasicEntity, &e.RenderComponent, &e.SpaceComponent)
		r.pool = append(r.pool, e)
	}
	for i, e := range r.pool {
		if i >= len(r.sprites) {
			e.Hidden = true
			continue
		}
		s := r.sprites[i]
		e.Hidden = false
		e.Color = s.Color
		e.Drawable = r.assets.Pixel()
		e.Scale = engo.Point{X: float32(s.Width), Y: float32(s.Height)}
		if s.Tire {
			e.Drawable = r.assets.Tire()
			e.Scale = engo.Point{X: float32(s.Width / TireSize), Y: float32(s.Height / TireSize)}
		}
		e.SpaceComponent = common.SpaceComponent{
			Position: engo.Point{X: float32(s.Position.X), Y: float32(s.Position.Y)},
			Width:    float32(s.Width),
			Height:   float32(s.Height),
			Rotation: float32(s.Rotation),
		}
	}
}

// Reset removes every pooled entity from the render system.
func (r *EngoRenderer) Reset() {
	if r.renderSystem != nil {
		for _, e := range r.pool {
			r.renderSystem.Remove(e.BasicEntity)
		}
	}
	r.pool = nil
	r.sprites = r.sprites[:0]
}
