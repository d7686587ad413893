package combat_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/tactics/internal/game/combat"
)

func TestActionTimer_Fires(t *testing.T) {
	var called atomic.Int32
	combat.NewActionTimer(20*time.Millisecond, func() { called.Add(1) })
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestActionTimer_Stop_PreventsCallback(t *testing.T) {
	var called atomic.Int32
	at := combat.NewActionTimer(50*time.Millisecond, func() { called.Add(1) })
	at.Stop()
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), called.Load())
}

func TestActionTimer_Reset_ExtendsDeadline(t *testing.T) {
	var called atomic.Int32
	at := combat.NewActionTimer(30*time.Millisecond, func() { called.Add(1) })
	time.Sleep(15 * time.Millisecond)
	at.Reset(60*time.Millisecond, func() { called.Add(1) })
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), called.Load(), "original deadline must not fire")
	assert.Eventually(t, func() bool { return called.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestActionTimer_StopIdempotent(t *testing.T) {
	at := combat.NewActionTimer(50*time.Millisecond, func() {})
	at.Stop()
	at.Stop()
	at.Stop()
}
