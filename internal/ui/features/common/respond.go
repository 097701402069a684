package common

import (
	"github.com/a-h/templ"
	"github.com/leapstack-labs/incomeshare/internal/records"
	"github.com/leapstack-labs/incomeshare/internal/ui/components"
	"github.com/leapstack-labs/incomeshare/internal/ui/notifier"
	"github.com/starfederation/datastar-go/datastar"
)

// PatchFragment sends one fragment to its region. Empty fragments remove
// the region's element.
func PatchFragment(sse *datastar.ServerSentEventGenerator, f records.Fragment) error {
	if f.Kind == records.KindEmpty {
		return sse.PatchElements("",
			datastar.WithSelector("#"+string(f.Region)),
			datastar.WithMode(datastar.ElementPatchModeRemove),
		)
	}
	return sse.PatchElementTempl(components.Fragment(f))
}

// WriteResponse dispatches the primary fragment, then every out-of-band
// fragment, then the notice. One failed patch stops the rest.
func WriteResponse(sse *datastar.ServerSentEventGenerator, resp records.Response) error {
	for _, f := range resp.Fragments() {
		if err := PatchFragment(sse, f); err != nil {
			return err
		}
	}
	return notifier.Notify(sse, resp.Notice)
}

// ReportError renders message in place of a report region. The element
// keeps the region's id so the next report patch replaces it.
func ReportError(region, message string) templ.Component {
	return components.Error(records.Fragment{
		Region:  records.Region(region),
		Kind:    records.KindError,
		Message: message,
	})
}

// PatchReportError replaces a report region with message and raises the
// same message as an error notice.
func PatchReportError(sse *datastar.ServerSentEventGenerator, region, message string) error {
	if err := sse.PatchElementTempl(ReportError(region, message)); err != nil {
		return err
	}
	return notifier.Error(sse, message)
}
