package nb2medium

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

// newTestPool returns a pool whose converters use a mock table converter.
func newTestPool(n int) *ConverterPool {
	return NewConverterPool(n, WithTableConverter(&mockTableConverter{}))
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestResolvePoolSize_Bounds(t *testing.T) {
	t.Parallel()

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want within [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
}

func TestNewConverterPool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"positive", 3, 3},
		{"zero clamps to one", 0, 1},
		{"negative clamps to one", -2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pool := newTestPool(tt.n)
			defer pool.Close()
			if pool.Size() != tt.want {
				t.Errorf("Size() = %d, want %d", pool.Size(), tt.want)
			}
		})
	}
}

func TestConverterPool_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	first, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	pool.Release(first)

	second, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if second != first {
		t.Error("released converter should be reused")
	}
	pool.Release(second)
}

func TestConverterPool_BlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	conv, err := pool.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan *Converter)
	go func() {
		c, _ := pool.Acquire()
		acquired <- c
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire() should block while the only converter is in use")
	case <-time.After(50 * time.Millisecond):
	}

	pool.Release(conv)
	select {
	case got := <-acquired:
		if got != conv {
			t.Error("waiting Acquire() should receive the released converter")
		}
	case <-time.After(time.Second):
		t.Fatal("Acquire() did not unblock after Release()")
	}
}

func TestConverterPool_CreateError(t *testing.T) {
	t.Parallel()

	pool := newTestPool(1)
	defer pool.Close()

	boom := errors.New("boom")
	pool.newConverter = func(...Option) (*Converter, error) { return nil, boom }
	if _, err := pool.Acquire(); !errors.Is(err, boom) {
		t.Fatalf("Acquire() error = %v, want boom", err)
	}

	pool.newConverter = NewConverter
	if _, err := pool.Acquire(); err != nil {
		t.Errorf("failed creation should free its slot: %v", err)
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	pool := newTestPool(2)
	conv, err := pool.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	if err := pool.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Release after close is a no-op.
	pool.Release(conv)

	if _, err := pool.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close() error = %v, want ErrPoolClosed", err)
	}
}

func TestConverterPool_Concurrent(t *testing.T) {
	t.Parallel()

	pool := newTestPool(3)
	defer pool.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := pool.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			pool.Release(conv)
		}()
	}
	wg.Wait()

	pool.mu.Lock()
	created := pool.created
	pool.mu.Unlock()
	if created > pool.Size() {
		t.Errorf("created %d converters, capacity %d", created, pool.Size())
	}
}
