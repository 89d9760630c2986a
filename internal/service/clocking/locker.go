package clocking

import (
	"context"
	"hash/fnv"
)

// Locker serializes pairing per person. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

const localStripes = 64

// LocalLocker is an in-process Locker built from a fixed set of striped
// semaphores; waiting honours ctx cancellation.
type LocalLocker struct {
	stripes [localStripes]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	var l LocalLocker
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return &l
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	ch := l.stripes[h.Sum32()%localStripes]

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
