// Package settings holds the terminal's keyboard shortcuts. Core code only
// reads them through Shortcuts; changes are pushed to subscribers.
package settings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kasir-pos/internal/logger"

	"go.uber.org/zap"
)

type Action string

const (
	ActionSearch Action = "search"
	ActionPay    Action = "pay"
	ActionCancel Action = "cancel"
	ActionHold   Action = "hold"
	ActionRecall Action = "recall"
)

var (
	ErrUnknownAction = errors.New("unknown shortcut action")
	ErrEmptyKey      = errors.New("shortcut key is required")
	ErrKeyInUse      = errors.New("shortcut key already assigned")
)

// Shortcuts is the read-only view the API depends on.
type Shortcuts interface {
	GetShortcut(action Action) string
}

func Defaults() map[Action]string {
	return map[Action]string{
		ActionSearch: "F2",
		ActionPay:    "F9",
		ActionCancel: "Escape",
		ActionHold:   "F7",
		ActionRecall: "F8",
	}
}

type Change struct {
	Action Action `json:"action"`
	Key    string `json:"key"`
}

type Store struct {
	mu     sync.RWMutex
	keys   map[Action]string
	subs   map[int]func(Change)
	nextID int
}

// NewStore starts from the defaults with overrides applied on top. Unknown
// actions in overrides are ignored.
func NewStore(overrides map[Action]string) *Store {
	keys := Defaults()
	for action, key := range overrides {
		if _, ok := keys[action]; ok && strings.TrimSpace(key) != "" {
			keys[action] = strings.TrimSpace(key)
		}
	}
	return &Store{keys: keys, subs: make(map[int]func(Change))}
}

func (s *Store) GetShortcut(action Action) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[action]
}

// All returns every binding sorted by action.
func (s *Store) All() []Change {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Change, 0, len(s.keys))
	for action, key := range s.keys {
		out = append(out, Change{Action: action, Key: key})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out
}

// Set rebinds action and notifies subscribers after the lock is released.
func (s *Store) Set(ctx context.Context, action Action, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	if _, ok := s.keys[action]; !ok {
		s.mu.Unlock()
		return ErrUnknownAction
	}
	for other, bound := range s.keys {
		if other != action && strings.EqualFold(bound, key) {
			s.mu.Unlock()
			return ErrKeyInUse
		}
	}
	s.keys[action] = key
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	logger.FromCtx(ctx).Info("shortcut changed",
		zap.String("layer", "settings"),
		zap.String("action", string(action)),
		zap.String("key", key),
	)

	change := Change{Action: action, Key: key}
	for _, fn := range subs {
		fn(change)
	}
	return nil
}

// Subscribe registers fn for every later change. The returned func removes it.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
