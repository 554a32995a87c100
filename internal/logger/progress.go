package logger

import "go.uber.org/zap"

// Progress returns a callback that logs "done/total" each time another
// stepPercent of the work completes, plus once at the end. It never blocks
// and is safe to pass where no display is attached.
func Progress(task string, stepPercent int) func(done, total int) {
	if stepPercent <= 0 || stepPercent > 100 {
		stepPercent = 10
	}
	lastBucket := -1
	return func(done, total int) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		bucket := pct / stepPercent
		if bucket == lastBucket && done != total {
			return
		}
		lastBucket = bucket
		Log.Info(task,
			zap.Int("done", done),
			zap.Int("total", total),
			zap.Int("percent", pct))
	}
}
