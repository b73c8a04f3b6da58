package services

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	k := newKeyedMutex()
	counts := map[string]*int{"a": new(int), "b": new(int)}
	var wg sync.WaitGroup

	for i := range 200 {
		key := "a"
		if i%2 == 0 {
			key = "b"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()
			*counts[key]++
		}()
	}
	wg.Wait()

	if *counts["a"] != 100 || *counts["b"] != 100 {
		t.Fatalf("a=%d b=%d, want 100 each", *counts["a"], *counts["b"])
	}
	if n := k.size(); n != 0 {
		t.Fatalf("expected released keys to be forgotten, %d left", n)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")

	done := make(chan struct{})
	go func() {
		unlockB := k.Lock("b")
		unlockB()
		close(done)
	}()
	<-done

	if n := k.size(); n != 1 {
		t.Fatalf("size = %d, want 1", n)
	}
	unlockA()
}
