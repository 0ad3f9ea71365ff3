package keylock_test

import (
	"sync"
	"testing"

	"github.com/sagabat/transaction-manage/internal/utils/keylock"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	locks := keylock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("acc_1")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locks.Len(), "entries should be released after use")
}

func TestKeyedMutex_LockAllOppositeOrder(t *testing.T) {
	locks := keylock.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locks.LockAll("b", "a")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locks.LockAll("a", "b")
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, locks.Len())
}

func TestKeyedMutex_UnlockIsIdempotent(t *testing.T) {
	locks := keylock.New()
	unlock := locks.Lock("k")
	unlock()
	unlock()
	assert.Equal(t, 0, locks.Len())
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, keylock.SortedUnique([]string{"c", "", "a", "b", "a"}))
	assert.Empty(t, keylock.SortedUnique(nil))
}
