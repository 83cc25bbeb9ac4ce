package voucher

import "github.com/sirupsen/logrus"

type VoucherLogHook struct{}

func (h *VoucherLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Voucher: " + entry.Message
	return nil
}

func (h *VoucherLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
