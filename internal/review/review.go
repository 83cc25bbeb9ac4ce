package review

import "github.com/sirupsen/logrus"

type ReviewLogHook struct{}

func (h *ReviewLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Review: " + entry.Message
	return nil
}

func (h *ReviewLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
