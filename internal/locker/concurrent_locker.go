package locker

import (
	"fmt"
	"sync"

	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/spf13/viper"
)

// ConcurrentLocker :
// Provides a pool of locks shared between the components that
// mutate player state. The dispatcher and each tick loop must
// hold the lock of a player before touching its galaxy; since
// mutations usually target a single player, locking the whole
// world would serialize unrelated work.
// Rather than one mutex per player, a finite pool of locks is
// distributed on demand: acquiring a lock for a player that
// already holds one returns the existing lock, and once all
// locks are distributed further acquisitions block until one
// is released.
//
// The `locker` protects the internal bookkeeping.
//
// The `locks` is the fixed pool distributed to clients.
//
// The `availableLocks` carries the indices of the free locks;
// receiving from it blocks when the pool is exhausted.
//
// The `registered` maps a player identifier to the index of
// the lock currently assigned to it.
type ConcurrentLocker struct {
	locker         sync.Mutex
	locks          []*Lock
	availableLocks chan int
	registered     map[string]int
	log            logger.Logger
}

// Lock :
// Guards the state of a single player. Several goroutines may
// share the same lock object; `Lock` blocks until the current
// holder calls `Release`.
//
// The `id` is the index of this lock in the pool, negative
// when the lock is unassigned.
//
// The `res` is the player identifier currently guarded.
//
// The `use` counts the goroutines sharing the lock; the lock
// returns to the pool when it drops to zero.
type Lock struct {
	id     int
	res    string
	use    int
	waiter chan struct{}
}

// defaultLockCount : Pool size when the configuration does
// not set `Concurrent.LockCount`.
const defaultLockCount = 10

// NewConcurrentLocker :
// Builds a locker with a pool size read from the viper
// configuration.
//
// The `log` defines a way to notify about lock churn.
//
// Returns the built-in locker.
func NewConcurrentLocker(log logger.Logger) *ConcurrentLocker {
	count := defaultLockCount
	if viper.IsSet("Concurrent.LockCount") {
		count = viper.GetInt("Concurrent.LockCount")
	}
	if count < 1 {
		count = 1
	}

	allLocks := make([]*Lock, count)
	ids := make(chan int, count)

	for id := range allLocks {
		allLocks[id] = &Lock{
			id:     -1,
			waiter: make(chan struct{}, 1),
		}
		allLocks[id].waiter <- struct{}{}
		ids <- id
	}

	return &ConcurrentLocker{
		locks:          allLocks,
		availableLocks: ids,
		registered:     make(map[string]int),
		log:            log,
	}
}

// Acquire :
// Fetches the lock guarding the provided player, assigning a
// free lock from the pool when the player has none. Blocks
// when the pool is exhausted until another player releases.
//
// The `resource` defines the player identifier to guard.
//
// Returns the lock assigned to this player.
func (cl *ConcurrentLocker) Acquire(resource string) *Lock {
	var l *Lock

	cl.locker.Lock()
	if id, ok := cl.registered[resource]; ok {
		l = cl.locks[id]
		l.use++
	}
	cl.locker.Unlock()

	if l != nil {
		return l
	}

	// No lock is assigned to this player yet; wait for a free
	// one and register it.
	id := <-cl.availableLocks

	cl.locker.Lock()
	defer cl.locker.Unlock()

	// Another goroutine may have assigned a lock to this player
	// while this one was waiting on the pool. Hand the drawn
	// lock back and share the winner's: two distinct locks for
	// the same player would both grant exclusivity.
	if existing, ok := cl.registered[resource]; ok {
		cl.availableLocks <- id

		l = cl.locks[existing]
		l.use++

		return l
	}

	cl.registered[resource] = id

	l = cl.locks[id]
	l.id = id
	l.res = resource
	l.use++

	cl.log.Trace(logger.Debug, "locker", fmt.Sprintf("Assigned lock %d to \"%s\"", id, resource))

	return l
}

// Release :
// Hands a lock back. The lock returns to the pool only once
// every goroutine sharing it has released it.
//
// The `lock` defines the lock to release; `nil` is ignored.
func (cl *ConcurrentLocker) Release(lock *Lock) {
	if lock == nil {
		return
	}

	cl.locker.Lock()
	defer cl.locker.Unlock()

	lock.use--
	if lock.use > 0 {
		return
	}

	delete(cl.registered, lock.res)
	cl.availableLocks <- lock.id

	lock.id = -1
	lock.res = ""
}

// Lock :
// Blocks until this goroutine is the only holder of the
// guarded player state.
func (l *Lock) Lock() {
	<-l.waiter
}

// Release :
// Releases the guarded state so another goroutine can enter.
//
// Returns an error when the lock was not held.
func (l *Lock) Release() error {
	if len(l.waiter) > 0 {
		return fmt.Errorf("cannot release lock, seems already released")
	}

	l.waiter <- struct{}{}

	return nil
}
