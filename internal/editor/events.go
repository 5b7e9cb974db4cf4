package editor

// EventType identifies editor events.
type EventType int

const (
	// EventImageLoaded fires after Open; data is the new *image.Buffer.
	EventImageLoaded EventType = iota
	// EventRefresh fires whenever the display changes; data is the
	// rendered *image.Buffer.
	EventRefresh
	// EventSaved fires after Save; data is the path.
	EventSaved
	// EventUndo fires after Undo; data is the remaining history length.
	EventUndo
	// EventPaletteExtracted fires after ExtractPalette; data is the palette.Palette.
	EventPaletteExtracted
	// EventError fires for every failed operation; data is the *Error.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventImageLoaded:
		return "ImageLoaded"
	case EventRefresh:
		return "Refresh"
	case EventSaved:
		return "Saved"
	case EventUndo:
		return "Undo"
	case EventPaletteExtracted:
		return "PaletteExtracted"
	case EventError:
		return "Error"
	default:
		return "Unknown"
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers an event listener for the specified event type.
func (e *Editor) On(event EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[event] = append(e.listeners[event], listener)
}

// emit triggers all listeners for the specified event type.
func (e *Editor) emit(event EventType, data interface{}) {
	for _, listener := range e.listeners[event] {
		listener(data)
	}
}
