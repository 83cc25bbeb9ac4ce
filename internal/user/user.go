package user

import "github.com/sirupsen/logrus"

type UserLogHook struct{}

func (h *UserLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "User: " + entry.Message
	return nil
}

func (h *UserLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
