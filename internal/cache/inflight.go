package cache

import "sync"

// Token identifies one refresh of a key.
type Token struct {
	key string
	seq uint64
}

type inflightKey struct {
	mu  sync.Mutex
	seq uint64
}

// Inflight hands out increasing tokens per key. Only the holder of the most
// recent token may publish its result.
type Inflight struct {
	mu   sync.Mutex
	keys map[string]*inflightKey
}

func NewInflight() *Inflight {
	return &Inflight{keys: make(map[string]*inflightKey)}
}

// lock returns the state of key with its own mutex held. The shared mutex only
// guards the map lookup.
func (i *Inflight) lock(key string) *inflightKey {
	i.mu.Lock()
	k, ok := i.keys[key]
	if !ok {
		k = &inflightKey{}
		i.keys[key] = k
	}
	i.mu.Unlock()

	k.mu.Lock()
	return k
}

func (i *Inflight) Begin(key string) Token {
	k := i.lock(key)
	defer k.mu.Unlock()

	k.seq++
	return Token{key: key, seq: k.seq}
}

// Current reports whether no newer refresh of the same key has started.
func (i *Inflight) Current(t Token) bool {
	k := i.lock(t.key)
	defer k.mu.Unlock()

	return k.seq == t.seq
}

// Commit runs publish only while t is current. A newer Begin of the same key
// waits for publish to return, other keys are not blocked.
func (i *Inflight) Commit(t Token, publish func()) bool {
	k := i.lock(t.key)
	defer k.mu.Unlock()

	if k.seq != t.seq {
		return false
	}
	publish()
	return true
}
