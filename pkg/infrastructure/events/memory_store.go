package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// InMemoryEventStore keeps every stream in memory and notifies subscribers
// asynchronously
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
	pending     sync.WaitGroup
	logger      *logrus.Logger
}

// NewInMemoryEventStore creates an empty store. Handler failures are logged to logger.
func NewInMemoryEventStore(logger *logrus.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

// Verify interface compliance
var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	versioned := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], versioned)
	s.allEvents = append(s.allEvents, versioned)

	handlers := make([]EventHandler, 0, len(s.subscribers[versioned.EventType]))
	for _, handler := range s.subscribers[versioned.EventType] {
		if handler.CanHandle(versioned.EventType) {
			handlers = append(handlers, handler)
		}
	}
	s.pending.Add(len(handlers))
	s.mutex.Unlock()

	for _, handler := range handlers {
		go func(h EventHandler, e Event) {
			defer s.pending.Done()
			if err := h.Handle(e); err != nil {
				s.logger.WithFields(logrus.Fields{
					"eventType": e.Type(),
					"stream":    e.StreamID(),
					"version":   e.Version(),
				}).WithError(err).Error("event handler failed")
			}
		}(handler, versioned)
	}
	return nil
}

// ReadEvents returns the stream's events from a version on, starting at 1
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events := s.streams[streamID]
	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}
	return append([]Event(nil), events[fromVersion-1:]...), nil
}

// ReadAllEvents returns every event from a global position on, starting at 0
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}
	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}

// Wait blocks until every handler started so far has returned
func (s *InMemoryEventStore) Wait() {
	s.pending.Wait()
}
