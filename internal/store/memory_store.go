package store

import "sync"

type memoryProvider struct {
	mu     sync.Mutex
	spaces map[string]*memoryStore
}

// NewMemoryProvider keeps everything in process memory. Used by tests and
// single-instance development runs.
func NewMemoryProvider() Provider {
	return &memoryProvider{spaces: make(map[string]*memoryStore)}
}

func (p *memoryProvider) Open(namespace string) Store {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.spaces[namespace]
	if !ok {
		s = &memoryStore{data: make(map[string][]byte)}
		p.spaces[namespace] = s
	}
	return s
}

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func (s *memoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *memoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
