package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastExcludesSender(t *testing.T) {
	d := NewDirectory()
	a := newConn("a", 4)
	b := newConn("b", 4)
	c := newConn("c", 4)
	d.Join("room", a)
	d.Join("room", b)
	d.Join("room", c)

	n := NewBroadcaster(d).Broadcast("room", []byte("hi"), a)
	assert.Equal(t, 2, n)

	assert.Empty(t, a.Outbound())
	assert.Equal(t, []byte("hi"), <-b.Outbound())
	assert.Equal(t, []byte("hi"), <-c.Outbound())
}

func TestBroadcastWithoutExclusion(t *testing.T) {
	d := NewDirectory()
	a := newConn("a", 4)
	d.Join("room", a)

	assert.Equal(t, 1, NewBroadcaster(d).Broadcast("room", []byte("hi"), nil))
	assert.Equal(t, 0, NewBroadcaster(d).Broadcast("empty", []byte("hi"), nil))
}

func TestBroadcastStaysInRoom(t *testing.T) {
	d := NewDirectory()
	a := newConn("a", 4)
	other := newConn("other", 4)
	d.Join("room", a)
	d.Join("elsewhere", other)

	NewBroadcaster(d).Broadcast("room", []byte("hi"), nil)
	assert.Empty(t, other.Outbound())
}

func TestBroadcastSkipsFailedMember(t *testing.T) {
	d := NewDirectory()
	closed := newConn("closed", 4)
	ok := newConn("ok", 4)
	d.Join("room", closed)
	d.Join("room", ok)
	closed.Close()

	n := NewBroadcaster(d).Broadcast("room", []byte("hi"), nil)
	assert.Equal(t, 1, n)
	assert.Equal(t, []byte("hi"), <-ok.Outbound())
}

func TestBroadcastClosesSlowMember(t *testing.T) {
	d := NewDirectory()
	slow := newConn("slow", 1)
	fast := newConn("fast", 4)
	d.Join("room", slow)
	d.Join("room", fast)

	b := NewBroadcaster(d)
	assert.Equal(t, 2, b.Broadcast("room", []byte("one"), nil))
	assert.Equal(t, 1, b.Broadcast("room", []byte("two"), nil))

	assert.Equal(t, StateClosed, slow.State())

	got := [][]byte{<-fast.Outbound(), <-fast.Outbound()}
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, got)

	// the frame queued before eviction is still there, then the queue ends
	first, open := <-slow.Outbound()
	require.True(t, open)
	assert.Equal(t, []byte("one"), first)
	_, open = <-slow.Outbound()
	assert.False(t, open)
}
