package wallet

import (
	"time"

	"hmy-wallet/pkg/monitor"
)

// 指标未初始化时 (库被单独使用) 全部跳过

func countSigned(kind string) {
	if monitor.Business != nil {
		monitor.Business.TxSignedTotal.WithLabelValues(kind).Inc()
	}
}

func countSent(kind string) {
	if monitor.Business != nil {
		monitor.Business.TxSentTotal.WithLabelValues(kind).Inc()
	}
}

func countFailed(kind, stage string) {
	if monitor.Business != nil {
		monitor.Business.TxFailedTotal.WithLabelValues(kind, stage).Inc()
	}
}

func observeWait(kind, result string, start time.Time) {
	if monitor.Business != nil {
		monitor.Business.ReceiptWait.WithLabelValues(kind, result).Observe(time.Since(start).Seconds())
	}
}
