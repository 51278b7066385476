package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInflight(t *testing.T) {
	inflight := NewInflight()

	first := inflight.Begin("staking")
	assert.True(t, inflight.Current(first))

	second := inflight.Begin("staking")
	other := inflight.Begin("token")
	assert.False(t, inflight.Current(first))
	assert.True(t, inflight.Current(second))
	assert.True(t, inflight.Current(other))

	published := 0
	assert.False(t, inflight.Commit(first, func() { published++ }))
	assert.True(t, inflight.Commit(second, func() { published++ }))
	assert.Equal(t, 1, published)
}

func TestInflight_SlowCommitDoesNotBlockOtherKeys(t *testing.T) {
	inflight := NewInflight()
	slow := inflight.Begin("user_staking_0xaaa")
	fast := inflight.Begin("token")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan bool)
	go func() {
		done <- inflight.Commit(slow, func() {
			close(entered)
			<-release
		})
	}()
	<-entered

	committed := make(chan bool)
	go func() {
		committed <- inflight.Commit(fast, func() {})
	}()

	select {
	case ok := <-committed:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("commit of an unrelated key waited for a slow publish")
	}

	// a new refresh of the slow key waits until its publish returns
	begun := make(chan Token)
	go func() { begun <- inflight.Begin("user_staking_0xaaa") }()
	select {
	case <-begun:
		t.Fatal("Begin interleaved with a publish of the same key")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.True(t, <-done)
	next := <-begun
	assert.False(t, inflight.Current(slow))
	assert.True(t, inflight.Current(next))
}
