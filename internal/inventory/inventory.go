package inventory

import "github.com/sirupsen/logrus"

type InventoryLogHook struct{}

func (h *InventoryLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Inventory: " + entry.Message
	return nil
}

func (h *InventoryLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
