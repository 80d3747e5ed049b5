package mystore

import (
	"context"
	"reflect"
	"sync"
)

type InMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

// inmemTransaction stages writes of all stores that participate in a
// transaction. Staged writes are only applied on commit.
type inmemTransaction struct {
	staged map[any]map[string]any
	writes []func()
}

func (t *inmemTransaction) stagedFor(store any) map[string]any {
	m, exists := t.staged[store]
	if !exists {
		m = map[string]any{}
		t.staged[store] = m
	}
	return m
}

func NewInMemoryStore[T any](c context.Context) (*InMemoryStore[T], func(), error) {
	return &InMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *InMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Join the ambient transaction so nested writes commit or roll back with it
	if c.Value(ctxTransactionKey{}) != nil {
		return f(c)
	}

	// Start transaction
	s.Lock()
	defer s.Unlock()

	t := &inmemTransaction{staged: map[any]map[string]any{}}

	// Within this block everything is transactional
	err := f(context.WithValue(c, ctxTransactionKey{}, t))
	if err != nil {
		// Rollback: staged writes are discarded
		return err
	}

	// Commit
	for _, write := range t.writes {
		write()
	}

	return nil
}

func (s *InMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	if t, ok := c.Value(ctxTransactionKey{}).(*inmemTransaction); ok {
		t.stagedFor(s)[uid] = value
		t.writes = append(t.writes, func() {
			s.Items[uid] = value
		})

		return nil
	}

	s.Lock()
	defer s.Unlock()

	s.Items[uid] = value

	return nil
}

func (s *InMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	if t, ok := c.Value(ctxTransactionKey{}).(*inmemTransaction); ok {
		if staged, exists := t.stagedFor(s)[uid]; exists {
			return staged.(T), true, nil
		}
		result, exists := s.Items[uid]

		return result, exists, nil
	}

	s.Lock()
	defer s.Unlock()

	result, exists := s.Items[uid]

	return result, exists, nil
}

func (s *InMemoryStore[T]) List(c context.Context) ([]T, error) {
	if t, ok := c.Value(ctxTransactionKey{}).(*inmemTransaction); ok {
		staged := t.stagedFor(s)

		result := make([]T, 0, len(s.Items)+len(staged))
		for uid, v := range s.Items {
			if overlay, exists := staged[uid]; exists {
				result = append(result, overlay.(T))
				continue
			}
			result = append(result, v)
		}
		for uid, v := range staged {
			if _, exists := s.Items[uid]; !exists {
				result = append(result, v.(T))
			}
		}

		return result, nil
	}

	s.Lock()
	defer s.Unlock()

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	return result, nil
}

// Query supports equality filters only; ordering is left to the caller.
func (s *InMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(all))
	for _, v := range all {
		if matchesFilters(v, filters) {
			result = append(result, v)
		}
	}

	return result, nil
}

func matchesFilters[T any](value T, filters []Filter) bool {
	rv := reflect.ValueOf(value)
	for _, f := range filters {
		if f.Compare != "=" {
			continue
		}
		field := rv.FieldByName(f.Field)
		if !field.IsValid() {
			return false
		}
		if !reflect.DeepEqual(field.Interface(), f.Value) {
			return false
		}
	}
	return true
}
