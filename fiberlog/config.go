package fiberlog

import "github.com/sirupsen/logrus"

// Config настройки middleware логирования запросов
type Config struct {
	// Logger если nil, используется глобальный logrus
	Logger *logrus.Logger
	// Tags поля записи, см. Tag*
	Tags []string
	// SkipPaths запросы по этим путям не логируются
	SkipPaths []string
}

var ConfigDefault = Config{
	Tags: []string{
		TagStatus,
		TagLatency,
		TagMethod,
		TagPath,
		TagUserID,
	},
}

func (c Config) skip(path string) bool {
	for _, p := range c.SkipPaths {
		if p == path {
			return true
		}
	}
	return false
}
