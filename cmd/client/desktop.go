package main

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-roadball/pkg/entity"
	engorender "github.com/opd-ai/go-roadball/pkg/render/engo"
)

// runDesktop opens an Engo window. Engo owns the calling goroutine until
// the window closes.
func (f frontEnd) runDesktop() error {
	scene := engorender.NewGameScene(engorender.Feed{
		Snapshots: f.sess.Snapshots(),
		Events:    f.sess.Events(),
		SendInput: func(in entity.Input) {
			if err := f.sess.SendInput(in); err != nil {
				f.logger.Warn(f.ctx, "input not sent", "error", err.Error())
			}
		},
	})

	f.runSession()
	f.group.Go(func() error {
		<-f.ctx.Done()
		engo.Exit()
		return nil
	})

	engo.Run(engo.RunOptions{
		Title:  "Roadball",
		Width:  f.opts.width,
		Height: f.opts.height,
		VSync:  true,
	}, scene)

	f.stop()
	return f.group.Wait()
}
