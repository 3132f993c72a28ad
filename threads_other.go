//go:build !linux

package threads

// osThreadID has no portable equivalent of Linux's gettid outside the
// unix family this build targets, so non-Linux builds degrade to a single
// identity for every carrier goroutine. CarrierStart on these platforms
// is only correct with a single carrier; see DESIGN.md.
func osThreadID() int { return 0 }
