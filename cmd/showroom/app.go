package main

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/assets"
	"github.com/Faultbox/showroom/internal/config"
	"github.com/Faultbox/showroom/internal/engine/debug"
	"github.com/Faultbox/showroom/internal/engine/renderer"
	"github.com/Faultbox/showroom/internal/engine/ui"
	"github.com/Faultbox/showroom/internal/intro"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/remote"
	"github.com/Faultbox/showroom/internal/viewer"
)

// App owns the window, the GL resources and the viewing session.
type App struct {
	backend  *ui.Backend
	renderer *renderer.Renderer
	loader   *assets.Loader
	session  *viewer.Session
	host     *ui.Host
	remote   *remote.Server

	// cleanup runs in reverse registration order on Close.
	cleanup []func()
}

// NewApp opens the window and starts loading assets in the background.
func NewApp(cfg *config.Config) (*App, error) {
	bg, err := config.ParseHexColor(cfg.Render.Background)
	if err != nil {
		return nil, err
	}

	a := &App{}
	a.backend, err = ui.NewBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height, bg)
	if err != nil {
		return nil, err
	}

	a.renderer, err = renderer.New(renderer.Config{ShadowMapSize: cfg.Render.ShadowMapSize})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.onClose(a.renderer.Close)

	a.session, err = viewer.NewSession(cfg, viewer.Options{MaxAnisotropy: a.renderer.MaxAnisotropy()})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.loader, err = assets.NewLoader(cfg.Assets.Base, cfg.Assets.Timeout)
	if err != nil {
		a.Close()
		return nil, err
	}

	var commands ui.CommandSource
	if cfg.Remote.Listen != "" {
		srv := remote.NewServer(16)
		if err := srv.Start(cfg.Remote.Listen); err != nil {
			a.Close()
			return nil, err
		}
		a.remote = srv
		a.onClose(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Close(ctx); err != nil {
				logger.Warn("closing control endpoint", zap.Error(err))
			}
		})
		a.session.Intro.OnTransition(func(_, to intro.State) {
			srv.Broadcast(remote.StateEvent(to))
		})
		commands = srv
	}

	shots := debug.NewScreenshots(filepath.Join(config.ConfigDir(), "screenshots"), "showroom")
	a.host = ui.NewHost(a.session, a.renderer, commands, shots)
	a.onClose(a.host.Close)

	ctx, cancel := context.WithCancel(context.Background())
	a.onClose(cancel)
	a.session.Load(ctx, a.loader)

	return a, nil
}

// Run blocks until the window is closed.
func (a *App) Run() {
	a.backend.Run(a.host.Frame)
}

// Close stops background work and releases resources. The SDL window and
// ImGui context are torn down by the backend when Run returns.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

func (a *App) onClose(fn func()) {
	a.cleanup = append(a.cleanup, fn)
}
