package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitsForAttached(t *testing.T) {
	sc := NewSafeClose()
	var stopped atomic.Int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			time.Sleep(5 * time.Millisecond)
			stopped.Add(1)
		})
	}

	assert.False(t, sc.Closed())
	sc.SendCloseSignal(nil)
	sc.SendCloseSignal(nil)

	assert.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(3), stopped.Load())
	assert.True(t, sc.Closed())
}

func TestSafeClose_KeepsFirstError(t *testing.T) {
	sc := NewSafeClose()
	first := errors.New("listen failed")

	sc.SendCloseSignal(first)
	sc.SendCloseSignal(errors.New("second"))

	assert.Equal(t, first, sc.WaitClosed())
}
