package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-roadball/pkg/entity"
	"github.com/opd-ai/go-roadball/pkg/render"
)

// inputPoll is how often held keys are turned into input.
const inputPoll = 25 * time.Millisecond

// runTerminal plays in the terminal until quit is pressed or the session
// ends.
func (f frontEnd) runTerminal() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialise terminal: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	tr := render.NewTerminalRenderer(screen, f.opts.scale)
	keys := render.NewKeyState(render.DefaultKeyHold)

	f.runSession()
	f.group.Go(func() error { return f.readKeys(screen, keys) })
	f.group.Go(func() error { return f.sendKeys(keys) })
	f.group.Go(func() error {
		events := f.sess.Events()
		for {
			select {
			case snap, ok := <-f.sess.Snapshots():
				if !ok {
					return nil
				}
				tr.DrawSnapshot(snap)
			case e, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				f.logger.Info(f.ctx, render.EventText(e), "event", string(e.Type))
			}
		}
	})

	return f.group.Wait()
}

// readKeys feeds key presses into keys. PollEvent blocks, so the context
// is turned into an interrupt event.
func (f frontEnd) readKeys(screen tcell.Screen, keys *render.KeyState) error {
	wake := make(chan struct{})
	defer close(wake)
	go func() {
		select {
		case <-f.ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-wake:
		}
	}()

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if f.ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if render.IsQuitKey(ev.Key(), ev.Rune()) {
				f.stop()
				return nil
			}
			keys.HandleKey(ev)
		}
	}
}

// sendKeys sends the held keys once per frame when they change.
func (f frontEnd) sendKeys(keys *render.KeyState) error {
	ticker := time.NewTicker(inputPoll)
	defer ticker.Stop()

	var last entity.Input
	for {
		select {
		case <-f.ctx.Done():
			return nil
		case now := <-ticker.C:
			in := keys.Input(now)
			if in == last {
				continue
			}
			if err := f.sess.SendInput(in); err != nil {
				f.logger.Warn(f.ctx, "input not sent", "error", err.Error())
				continue
			}
			last = in
		}
	}
}
