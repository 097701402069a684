package records

import (
	"fmt"

	"github.com/leapstack-labs/incomeshare/pkg/core"
)

// Region identifies one addressable screen region.
type Region string

// Fixed regions.
const (
	RegionDeleteStatus Region = "delete-status"
	RegionAppendArea   Region = "append-area"
)

// ListKind names a managed list view. The edit list offers inline editing,
// the delete list offers per-row and range deletion.
type ListKind string

// List kinds.
const (
	ListEdit   ListKind = "edit"
	ListDelete ListKind = "delete"
)

// ListRegion returns the region holding the whole list.
func ListRegion(kind ListKind) Region {
	return Region(string(kind) + "-list")
}

// RowRegion returns the region of one observation row within a list.
func RowRegion(kind ListKind, id int64) Region {
	return Region(fmt.Sprintf("%s-row-%d", kind, id))
}

// FragmentKind is the shape of a fragment.
type FragmentKind int

// Fragment kinds.
const (
	KindReadOnlyRow FragmentKind = iota
	KindEditingRow
	KindList
	KindStatus
	KindEmpty
	KindError
	KindAppendForm
)

var kindNames = map[FragmentKind]string{
	KindReadOnlyRow: "read-only-row",
	KindEditingRow:  "editing-row",
	KindList:        "list",
	KindStatus:      "status",
	KindEmpty:       "empty",
	KindError:       "error",
	KindAppendForm:  "append-form",
}

func (k FragmentKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FragmentKind(%d)", int(k))
}

// Fragment is a unit of output addressed to one region. It carries data,
// not markup; the transport layer picks the concrete rendering.
type Fragment struct {
	Region Region
	Kind   FragmentKind
	List   ListKind

	Observation  *core.Observation
	Observations []core.Observation
	Entity       *core.Entity

	// Period is the suggested period of an append form.
	Period int
	// Message is the text of a status or error fragment.
	Message string
	// Annotation is an inline error shown on an editing row.
	Annotation string
	// Input is the raw value an editing row is pre-populated with.
	Input string
}

// NoticeKind classifies a transient notification.
type NoticeKind string

// Notice kinds.
const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// Notice is an ephemeral notification carried beside the fragments.
// It holds no durable state.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

// Response is the outcome of one user action: a primary fragment for the
// region that issued the request, zero or more out-of-band fragments for
// other regions, and an optional notice.
type Response struct {
	Primary   Fragment
	OutOfBand []Fragment
	Notice    *Notice
}

// Fragments returns the primary fragment followed by the out-of-band ones.
func (r Response) Fragments() []Fragment {
	return append([]Fragment{r.Primary}, r.OutOfBand...)
}

func successNotice(format string, args ...any) *Notice {
	return &Notice{Kind: NoticeSuccess, Text: fmt.Sprintf(format, args...)}
}

func errorNotice(text string) *Notice {
	return &Notice{Kind: NoticeError, Text: text}
}

func infoNotice(text string) *Notice {
	return &Notice{Kind: NoticeInfo, Text: text}
}

func errorFragment(region Region, list ListKind, message string) Fragment {
	return Fragment{Region: region, Kind: KindError, List: list, Message: message}
}

// ErrorResponse is an error fragment in region paired with the same text as
// an error notice.
func ErrorResponse(region Region, list ListKind, message string) Response {
	return Response{Primary: errorFragment(region, list, message), Notice: errorNotice(message)}
}
