package viewer

import (
	"errors"

	"GopherView/internal/logger"
	"GopherView/internal/renderer"

	"go.uber.org/zap"
)

// event is a background result applied on the loop thread.
type event interface {
	apply(v *Viewer)
}

type environmentLoaded struct {
	path string
	env  *renderer.Environment
	err  error
}

func (e environmentLoaded) apply(v *Viewer) {
	if e.err != nil {
		logger.Log.Warn("Environment map unavailable", zap.String("path", e.path), zap.Error(e.err))
		return
	}
	v.scene.Environment = e.env
	v.render.SetEnvironment(e.env)
	logger.Log.Info("Environment map applied",
		zap.String("path", e.path),
		zap.Int("levels", len(e.env.Levels)))
}

type loadProgress struct {
	generation uint64
	percent    int
}

func (e loadProgress) apply(v *Viewer) {
	if e.generation != v.generation {
		return
	}
	v.status.LoadingProgress(e.percent)
}

type loadFinished struct {
	generation uint64
	url        string
	model      *renderer.Model
	err        error
}

func (e loadFinished) apply(v *Viewer) {
	if e.generation != v.generation {
		logger.Log.Debug("Dropping superseded model load", zap.String("url", e.url))
		return
	}
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}

	err := e.err
	if err == nil && e.model == nil {
		err = errors.New("loader returned no model")
	}
	if err != nil {
		logger.Log.Error("Failed to load model", zap.String("url", e.url), zap.Error(err))
		v.status.LoadingFinished(e.url, err)
		return
	}

	v.installModel(e.model)
	v.status.LoadingFinished(e.url, nil)
}
