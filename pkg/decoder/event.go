package decoder

// Event is the outcome of one ProcessInput call. The subscribable events
// are bit flags and may be combined into a mask for SubscribeEvents.
type Event int

const (
	// EventSuccess means decoding completed. The decoder is finished.
	EventSuccess Event = 0
	// EventError means ProcessInput failed; the error says why.
	EventError Event = 1
	// EventNeedMoreInput means the cursor was exhausted before the next
	// event boundary.
	EventNeedMoreInput Event = 2
	// EventNeedOutputBuffer means pixel data is next and no buffer is bound.
	EventNeedOutputBuffer Event = 5

	// EventBasicInfo means the header was parsed and GetBasicInfo is valid.
	EventBasicInfo Event = 0x40
	// EventColorEncoding means GetColorEncoding is valid.
	EventColorEncoding Event = 0x100
	// EventFullImage means every group has been written to the output buffer.
	EventFullImage Event = 0x1000

	// EventFinished is returned by every call after EventSuccess.
	EventFinished Event = 0x10000
)

// subscribable holds the events accepted by SubscribeEvents.
const subscribable = EventBasicInfo | EventColorEncoding | EventFullImage

// String returns the string representation of the event.
func (e Event) String() string {
	switch e {
	case EventSuccess:
		return "success"
	case EventError:
		return "error"
	case EventNeedMoreInput:
		return "need-more-input"
	case EventNeedOutputBuffer:
		return "need-output-buffer"
	case EventBasicInfo:
		return "basic-info"
	case EventColorEncoding:
		return "color-encoding"
	case EventFullImage:
		return "full-image"
	case EventFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a Decoder.
type State int

const (
	StateCreated State = iota
	StateHeaderParsing
	StateBasicInfoReady
	StateAwaitingOutputBuffer
	StateImageDecoding
	StateImageReady
	StateFinished
	StateError
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateHeaderParsing:
		return "header-parsing"
	case StateBasicInfoReady:
		return "basic-info-ready"
	case StateAwaitingOutputBuffer:
		return "awaiting-output-buffer"
	case StateImageDecoding:
		return "image-decoding"
	case StateImageReady:
		return "image-ready"
	case StateFinished:
		return "finished"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// terminal reports whether no further decoding can happen.
func (s State) terminal() bool {
	return s == StateFinished || s == StateError
}
