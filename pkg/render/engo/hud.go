// pkg/render/engo/hud.go
package engo

import (
	"image/color"
	"time"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
)

// HUD layout in pixels
const (
	hudMargin     = 8
	hudLineHeight = FontSize + 4
)

// HUDMessage is one line of the event log.
type HUDMessage struct {
	Text      string
	Timestamp time.Time
}

type hudEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// HUDSystem draws the status line and the most recent event messages in
// screen space.
type HUDSystem struct {
	renderSystem *common.RenderSystem
	font         *common.Font

	status     string
	messages   []HUDMessage
	maxLines   int
	messageTTL time.Duration
	now        func() time.Time

	entities []*hudEntity
	hudColor color.Color
}

// NewHUDSystem creates a HUD showing up to five messages for five seconds.
func NewHUDSystem() *HUDSystem {
	return &HUDSystem{
		maxLines:   5,
		messageTTL: 5 * time.Second,
		now:        time.Now,
		hudColor:   color.RGBA{255, 255, 255, 255},
	}
}

// Attach sets the render system and font text is drawn with.
func (hud *HUDSystem) Attach(renderSystem *common.RenderSystem, font *common.Font) {
	hud.renderSystem = renderSystem
	hud.font = font
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update redraws the HUD text.
func (hud *HUDSystem) Update(dt float32) {
	hud.expire()
	if hud.renderSystem == nil || hud.font == nil {
		return
	}
	lines := hud.Lines()
	for len(hud.entities) < len(lines) {
		e := &hudEntity{BasicEntity: ecs.NewBasic()}
		e.RenderComponent = common.RenderComponent{Color: hud.hudColor}
		e.SetShader(common.HUDShader)
		e.SetZIndex(1000)
		hud.renderSystem.Add(&e.BasicEntity, &e.RenderComponent, &e.SpaceComponent)
		hud.entities = append(hud.entities, e)
	}
	for i, e := range hud.entities {
		if i >= len(lines) {
			e.Hidden = true
			continue
		}
		e.Hidden = false
		e.Drawable = common.Text{Font: hud.font, Text: lines[i]}
		e.SpaceComponent = common.SpaceComponent{
			Position: engo.Point{X: hudMargin, Y: float32(hudMargin + i*hudLineHeight)},
		}
	}
}

// SetStatus sets the top line.
func (hud *HUDSystem) SetStatus(status string) {
	hud.status = status
}

// AddMessage appends a line to the event log, keeping the most recent.
func (hud *HUDSystem) AddMessage(text string) {
	hud.messages = append(hud.messages, HUDMessage{Text: text, Timestamp: hud.now()})
	if len(hud.messages) > hud.maxLines {
		hud.messages = hud.messages[len(hud.messages)-hud.maxLines:]
	}
}

// expire drops messages older than the TTL.
func (hud *HUDSystem) expire() {
	cutoff := hud.now().Add(-hud.messageTTL)
	i := 0
	for i < len(hud.messages) && hud.messages[i].Timestamp.Before(cutoff) {
		i++
	}
	hud.messages = hud.messages[i:]
}

// Lines returns the text drawn, top to bottom.
func (hud *HUDSystem) Lines() []string {
	lines := make([]string, 0, len(hud.messages)+1)
	if hud.status != "" {
		lines = append(lines, hud.status)
	}
	for _, m := range hud.messages {
		lines = append(lines, m.Text)
	}
	return lines
}

// Messages returns the event log.
func (hud *HUDSystem) Messages() []HUDMessage {
	return hud.messages
}

// ClearMessages empties the event log.
func (hud *HUDSystem) ClearMessages() {
	hud.messages = nil
}
