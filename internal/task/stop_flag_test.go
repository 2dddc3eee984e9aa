package task

import (
	"sync"
	"testing"
)

func TestStopFlagLifecycle(t *testing.T) {
	t.Parallel()

	var flag StopFlag
	if flag.IsSet() {
		t.Error("new flag should start clear")
	}

	flag.Set()
	if !flag.IsSet() {
		t.Error("flag should report set after Set")
	}

	flag.Clear()
	if flag.IsSet() {
		t.Error("flag should report clear after Clear")
	}
}

func TestStopFlagConcurrentUse(t *testing.T) {
	t.Parallel()

	var flag StopFlag
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flag.Set()
			_ = flag.IsSet()
		}()
	}
	wg.Wait()

	if !flag.IsSet() {
		t.Error("flag should be set after concurrent setters finish")
	}
}
