package wishlist

import "github.com/sirupsen/logrus"

type WishlistLogHook struct{}

func (h *WishlistLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Wishlist: " + entry.Message
	return nil
}

func (h *WishlistLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
