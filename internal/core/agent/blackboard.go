package agent

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Blackboard is a thread-safe key/value store shared by an agent's
// evaluators and actions. Namespaced views share the root's storage.
type Blackboard struct {
	mu      *sync.RWMutex
	data    map[string]any
	version *atomic.Uint64
	prefix  string
}

func NewBlackboard() *Blackboard {
	return &Blackboard{
		mu:      &sync.RWMutex{},
		data:    make(map[string]any),
		version: &atomic.Uint64{},
	}
}

func (b *Blackboard) fullKey(key string) string {
	if b.prefix == "" {
		return key
	}
	return b.prefix + ":" + key
}

func (b *Blackboard) Get(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[b.fullKey(key)]
	return v, ok
}

func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	b.data[b.fullKey(key)] = value
	b.mu.Unlock()
	b.version.Add(1)
}

func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	_, ok := b.data[b.fullKey(key)]
	delete(b.data, b.fullKey(key))
	b.mu.Unlock()
	if ok {
		b.version.Add(1)
	}
}

// Update applies fn to the current value of key atomically.
func (b *Blackboard) Update(key string, fn func(old any, exists bool) any) any {
	b.mu.Lock()
	full := b.fullKey(key)
	old, ok := b.data[full]
	v := fn(old, ok)
	b.data[full] = v
	b.mu.Unlock()
	b.version.Add(1)
	return v
}

// Version increases on every write; readers can use it to detect change.
func (b *Blackboard) Version() uint64 {
	return b.version.Load()
}

// Namespace returns a view whose keys are prefixed with "ns:".
func (b *Blackboard) Namespace(ns string) *Blackboard {
	ns = strings.ReplaceAll(ns, ":", "_")
	if b.prefix != "" {
		ns = b.prefix + ":" + ns
	}
	return &Blackboard{mu: b.mu, data: b.data, version: b.version, prefix: ns}
}

func (b *Blackboard) Keys() []string {
	b.mu.RLock()
	keys := make([]string, 0, len(b.data))
	pref := b.fullKey("")
	for k := range b.data {
		if b.prefix == "" {
			keys = append(keys, k)
		} else if strings.HasPrefix(k, pref) {
			keys = append(keys, strings.TrimPrefix(k, pref))
		}
	}
	b.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Snapshot copies the visible entries into a new map.
func (b *Blackboard) Snapshot() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]any, len(b.data))
	pref := b.fullKey("")
	for k, v := range b.data {
		if b.prefix == "" {
			out[k] = v
		} else if strings.HasPrefix(k, pref) {
			out[strings.TrimPrefix(k, pref)] = v
		}
	}
	return out
}

func (b *Blackboard) GetBool(key string) (bool, bool) {
	v, ok := b.Get(key)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		parsed, err := strconv.ParseBool(t)
		return parsed, err == nil
	default:
		return false, false
	}
}

func (b *Blackboard) GetFloat(key string) (float64, bool) {
	v, ok := b.Get(key)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func (b *Blackboard) GetString(key string) (string, bool) {
	v, ok := b.Get(key)
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// ParseValue turns a textual parameter into an int64, float64, bool or string,
// in that order of preference. Only "true" and "false" (any case) are bools,
// so "1" and "0" stay numeric.
func ParseValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch {
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	}
	return s
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
