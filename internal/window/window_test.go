package window

import (
	"sync"
	"testing"
)

func TestResizeFlag(t *testing.T) {
	var flag ResizeFlag
	if flag.Raised() {
		t.Fatal("expected zero flag to be lowered")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			flag.Raise()
		}()
	}
	wg.Wait()

	if !flag.Raised() {
		t.Fatal("expected flag raised from other goroutines to be visible")
	}

	flag.Clear()
	if flag.Raised() {
		t.Fatal("expected flag to be cleared")
	}
}
