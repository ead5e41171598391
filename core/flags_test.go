package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingFlagsRaiseTake(t *testing.T) {
	var p PendingFlags
	assert.False(t, p.Any())

	p.Raise(FlagButton)
	p.Raise(FlagButton)
	assert.True(t, p.Pending(FlagButton))
	assert.False(t, p.Pending(FlagRadio))
	assert.True(t, p.Any())

	p.Raise(FlagRadio)
	assert.True(t, p.Take(FlagButton))
	assert.False(t, p.Take(FlagButton))
	assert.True(t, p.Any(), "radio still pending")
	assert.True(t, p.Take(FlagRadio))
	assert.False(t, p.Any())
}

func TestPendingFlagsConcurrentRaise(t *testing.T) {
	var p PendingFlags
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				p.Raise(FlagButton)
			} else {
				p.Raise(FlagRadio)
			}
		}(i)
	}
	wg.Wait()
	assert.True(t, p.Pending(FlagButton))
	assert.True(t, p.Pending(FlagRadio))
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "button", FlagButton.String())
	assert.Equal(t, "radio", FlagRadio.String())
	assert.Equal(t, "flags(3)", (FlagButton | FlagRadio).String())
}
