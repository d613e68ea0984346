package client

import "testing"

func TestPoolGetCreatesUpToMaxSize(t *testing.T) {
	created := 0
	pool := NewPool(2, func() *Channel {
		created++
		return New(testDescriptor(), "unused")
	})

	first, err := pool.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := pool.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if created != 2 {
		t.Errorf("expected 2 channels created, got %d", created)
	}
	if first == second {
		t.Error("two concurrent Gets under capacity should not return the same channel")
	}
}

func TestPoolReusesReturnedChannel(t *testing.T) {
	pool := NewPool(1, func() *Channel {
		return New(testDescriptor(), "unused")
	})

	ch, err := pool.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	pool.Put(ch)

	again, err := pool.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again != ch {
		t.Error("expected Get to return the channel just Put back")
	}
}

func TestPoolGetBlocksAtCapacityUntilPut(t *testing.T) {
	pool := NewPool(1, func() *Channel {
		return New(testDescriptor(), "unused")
	})

	ch, err := pool.Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	result := make(chan *Channel, 1)
	go func() {
		got, err := pool.Get()
		if err != nil {
			t.Errorf("Get failed: %v", err)
			return
		}
		result <- got
	}()

	pool.Put(ch)

	got := <-result
	if got != ch {
		t.Error("expected the blocked Get to receive the returned channel")
	}
}
