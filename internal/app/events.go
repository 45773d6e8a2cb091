package app

// EventType identifies different session events.
type EventType int

const (
	EventMapLoaded     EventType = iota // data: geometry.Size (map extent)
	EventZoomChanged                    // data: int (new zoom level)
	EventCameraMoved                    // data: geometry.Rect (camera bounds)
	EventRepaintNeeded                  // data: nil
	EventObjectsChanged                 // data: string (object id)
)

func (e EventType) String() string {
	switch e {
	case EventMapLoaded:
		return "map-loaded"
	case EventZoomChanged:
		return "zoom-changed"
	case EventCameraMoved:
		return "camera-moved"
	case EventRepaintNeeded:
		return "repaint-needed"
	case EventObjectsChanged:
		return "objects-changed"
	default:
		return "unknown"
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type emission struct {
	event EventType
	data  interface{}
}

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func (s *Session) emitAll(es []emission) {
	for _, e := range es {
		s.Emit(e.event, e.data)
	}
}
