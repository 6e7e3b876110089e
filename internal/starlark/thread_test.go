package starlark

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/customfm/fmlint/internal/testutil"
)

func TestThreadPool_GetPut(t *testing.T) {
	pool := NewThreadPool(5, nil)

	thread := pool.Get("test1")
	require.NotNil(t, thread)
	assert.Equal(t, "test1", thread.Name)

	pool.Put(thread)
	assert.Equal(t, 1, pool.Size())

	thread2 := pool.Get("test2")
	assert.Equal(t, 0, pool.Size())
	assert.Equal(t, "test2", thread2.Name)
}

func TestThreadPool_MaxSize(t *testing.T) {
	pool := NewThreadPool(2, nil)

	threads := make([]*starlark.Thread, 3)
	for i := range threads {
		threads[i] = pool.Get("test")
	}
	for _, thread := range threads {
		pool.Put(thread)
	}

	assert.Equal(t, 2, pool.Size())
}

func TestThreadPool_DefaultSize(t *testing.T) {
	pool := NewThreadPool(0, nil)
	for i := 0; i < 5; i++ {
		pool.Put(pool.Get("test"))
	}
	assert.NotEqual(t, 0, pool.Size())
}

func TestThreadPool_Concurrent(t *testing.T) {
	pool := NewThreadPool(10, nil)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Put(pool.Get("concurrent"))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, pool.Size(), 10)
}

func TestThreadPool_PrintLogs(t *testing.T) {
	logger, buf := testutil.NewCaptureLogger()
	pool := NewThreadPool(1, logger)
	thread := pool.Get("printer")

	_, err := starlark.ExecFile(thread, "p.star", `print("hello from rule")`, nil) //nolint:staticcheck // SA1019
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "hello from rule"), buf.String())
	assert.Contains(t, buf.String(), "thread=printer")
}
