package viewer

import (
	"GopherView/internal/logger"

	"go.uber.org/zap"
)

// StatusListener is told about model loads. All calls happen on the loop thread.
type StatusListener interface {
	LoadingStarted(url string)
	LoadingProgress(percent int)
	// LoadingFinished hides the indicator. err is nil on success.
	LoadingFinished(url string, err error)
}

// LogStatus reports load progress to the log only.
type LogStatus struct{}

func (LogStatus) LoadingStarted(url string) {
	logger.Log.Info("Loading model", zap.String("url", url))
}

func (LogStatus) LoadingProgress(percent int) {
	logger.Log.Debug("Loading progress", zap.Int("percent", percent))
}

func (LogStatus) LoadingFinished(url string, err error) {
	if err != nil {
		logger.Log.Debug("Loading aborted", zap.String("url", url))
		return
	}
	logger.Log.Info("Model ready", zap.String("url", url))
}
