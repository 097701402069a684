// Package notifier delivers transient notices to the page over the
// datastar signal channel. Notices carry no durable state; the page shows
// the latest one until the user dismisses it.
package notifier

import (
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/starfederation/datastar-go/datastar"
)

// Signals is the notice signal shape the page shell declares.
type Signals struct {
	Notice records.Notice `json:"notice"`
}

// Notify patches the notice signals. A nil notice is a no-op.
func Notify(sse *datastar.ServerSentEventGenerator, notice *records.Notice) error {
	if notice == nil {
		return nil
	}
	return sse.MarshalAndPatchSignals(Signals{Notice: *notice})
}

// Error patches an error notice with the given text.
func Error(sse *datastar.ServerSentEventGenerator, text string) error {
	return Notify(sse, &records.Notice{Kind: records.NoticeError, Text: text})
}

// Clear dismisses any visible notice.
func Clear(sse *datastar.ServerSentEventGenerator) error {
	return sse.MarshalAndPatchSignals(Signals{})
}
