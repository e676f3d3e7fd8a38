// pkg/render/engo/scene.go
package engo

import (
	"fmt"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/network"
	"github.com/opd-ai/go-roadball/pkg/render"
)

// Feed is what a scene draws: snapshots and events from a local game or a
// stream client. Either channel may be nil.
type Feed struct {
	Snapshots <-chan engine.Snapshot
	Events    <-chan network.EventPayload
	// SendInput receives every change of the pressed keys. May be nil.
	SendInput func(entity.Input)
}

// GameScene represents the main game scene in Engo
type GameScene struct {
	feed Feed

	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem

	latest engine.Snapshot
	frames uint64
}

// NewGameScene creates a scene drawing feed.
func NewGameScene(feed Feed) *GameScene {
	camera := NewCameraSystem()
	return &GameScene{
		feed:     feed,
		camera:   camera,
		renderer: NewEngoRenderer(NewAssetManager(), camera),
		input:    NewInputSystem(feed.SendInput),
		hud:      NewHUDSystem(),
	}
}

// Type returns the scene type (required by Engo)
func (scene *GameScene) Type() string {
	return "RoadballScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *GameScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *GameScene) Setup(u engo.Updater) {
	world, ok := u.(*ecs.World)
	if !ok {
		panic(fmt.Sprintf("unexpected updater %T", u))
	}
	common.SetBackground(common.Black)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	if err := scene.renderer.Initialize(renderSystem); err != nil {
		panic("failed to initialize renderer: " + err.Error())
	}
	scene.camera.SetViewport(float64(engo.GameWidth()), float64(engo.GameHeight()))

	SetupInputBindings()
	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(&feedSystem{scene: scene})

	scene.hud.Attach(renderSystem, scene.renderer.assets.Font())
	world.AddSystem(scene.hud)
}

// feedSystem drains the feed on the engo thread.
type feedSystem struct {
	scene *GameScene
}

func (f *feedSystem) Remove(basic ecs.BasicEntity) {}

func (f *feedSystem) Update(dt float32) {
	f.scene.consume()
}

// consume applies every queued event and draws the newest snapshot. It
// reports whether a frame was drawn.
func (scene *GameScene) consume() bool {
	for {
		select {
		case e, ok := <-scene.feed.Events:
			if !ok {
				scene.feed.Events = nil
				continue
			}
			scene.hud.AddMessage(render.EventText(e))
			continue
		default:
		}
		break
	}

	var (
		snap  engine.Snapshot
		fresh bool
	)
	for {
		select {
		case s, ok := <-scene.feed.Snapshots:
			if !ok {
				scene.feed.Snapshots = nil
				continue
			}
			snap, fresh = s, true
			continue
		default:
		}
		break
	}
	if !fresh {
		return false
	}

	scene.latest = snap
	scene.frames++
	scene.renderer.DrawSnapshot(snap)
	scene.hud.SetStatus(render.StatusLine(snap))
	return true
}

// Latest returns the last snapshot drawn.
func (scene *GameScene) Latest() engine.Snapshot {
	return scene.latest
}

// Frames returns how many snapshots were drawn.
func (scene *GameScene) Frames() uint64 {
	return scene.frames
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *GameScene) Exit() {
	scene.renderer.Reset()
}
