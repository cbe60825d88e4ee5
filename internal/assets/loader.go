package assets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/logger"
)

// Loader starts background loads of the scene and environment.
type Loader struct {
	Manager *Manager
	Timeout time.Duration
}

// NewLoader creates a loader reading from base, a directory or http(s) URL.
func NewLoader(base string, timeout time.Duration) (*Loader, error) {
	src, err := NewSource(base, timeout)
	if err != nil {
		return nil, err
	}
	m := NewManager()
	m.AddSource(src)
	return &Loader{Manager: m, Timeout: timeout}, nil
}

// Scene fetches and decodes a glTF binary.
func (l *Loader) Scene(ctx context.Context, name string) *Task[*Model] {
	return Run(ctx, func(ctx context.Context, report ProgressFunc) (*Model, error) {
		ctx, cancel := l.withTimeout(ctx)
		defer cancel()

		start := time.Now()
		data, err := l.Manager.Load(ctx, name, report)
		if err != nil {
			return nil, err
		}
		m, err := DecodeGLB(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		logger.Named("assets").Info("scene loaded",
			zap.String("name", name),
			zap.Int("bytes", len(data)),
			zap.Int("meshes", len(m.Scene.Meshes())),
			zap.Int("clips", len(m.Clips)),
			zap.Duration("took", time.Since(start)))
		return m, nil
	})
}

// Environment fetches and decodes a Radiance HDR map.
func (l *Loader) Environment(ctx context.Context, name string) *Task[*Environment] {
	return Run(ctx, func(ctx context.Context, report ProgressFunc) (*Environment, error) {
		ctx, cancel := l.withTimeout(ctx)
		defer cancel()

		data, err := l.Manager.Load(ctx, name, report)
		if err != nil {
			return nil, err
		}
		env, err := DecodeHDR(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		logger.Named("assets").Info("environment loaded",
			zap.String("name", name), zap.Int("width", env.Width), zap.Int("height", env.Height))
		return env, nil
	})
}

func (l *Loader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, l.Timeout)
}
