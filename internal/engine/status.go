package engine

import (
	"fmt"
	"path"

	"GopherView/internal/logger"

	"go.uber.org/zap"
)

// TitleStatus shows model load progress in the window title. The plain title
// comes back once the load finishes; a failure keeps a short notice instead.
type TitleStatus struct {
	base     string
	name     string
	setTitle func(string)
}

func NewTitleStatus(base string, setTitle func(string)) *TitleStatus {
	return &TitleStatus{base: base, setTitle: setTitle}
}

func (s *TitleStatus) LoadingStarted(url string) {
	s.name = path.Base(url)
	logger.Log.Info("Loading model", zap.String("url", url))
	s.setTitle(loadingTitle(s.base, s.name, 0))
}

func (s *TitleStatus) LoadingProgress(percent int) {
	s.setTitle(loadingTitle(s.base, s.name, percent))
}

func (s *TitleStatus) LoadingFinished(url string, err error) {
	if err != nil {
		s.setTitle(fmt.Sprintf("%s - failed to load %s", s.base, path.Base(url)))
		return
	}
	logger.Log.Info("Model ready", zap.String("url", url))
	s.setTitle(fmt.Sprintf("%s - %s", s.base, path.Base(url)))
}

// loadingTitle omits the percentage when the total size is unknown.
func loadingTitle(base, name string, percent int) string {
	if percent < 0 {
		return fmt.Sprintf("%s - Loading %s", base, name)
	}
	return fmt.Sprintf("%s - Loading %s %d%%", base, name, percent)
}
