package walk_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dirsum/dirsum/internal/hashers"
	"github.com/dirsum/dirsum/internal/readers"
	"github.com/dirsum/dirsum/internal/walk"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, contents := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	}
}

func newWalker(t *testing.T, root string, configure func(*walk.OptionsBuilder)) *walk.Walker {
	t.Helper()
	factory, err := hashers.Factory(hashers.BLAKE3)
	require.NoError(t, err)

	b := walk.NewOptionsBuilder().Path(root).Hasher(factory).ReaderFactory(readers.NewFactory())
	if configure != nil {
		configure(b)
	}
	opts, err := b.Build()
	require.NoError(t, err)
	return walk.NewWalker(opts)
}

// TestWalker_BLAKE3CompositeDigestMatchesManualComposition verifies the
// composite digest is BLAKE3(BLAKE3("x") || BLAKE3("y")), files absorbed in
// sorted path order.
func TestWalker_BLAKE3CompositeDigestMatchesManualComposition(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x", "b.txt": "y"})

	w := newWalker(t, root, nil)
	require.NoError(t, w.Collect())
	digest, err := w.Hash()
	require.NoError(t, err)

	factory, err := hashers.Factory(hashers.BLAKE3)
	require.NoError(t, err)

	ha := factory.New()
	ha.Absorb([]byte("x"))
	digestA := ha.Finalize()

	hb := factory.New()
	hb.Absorb([]byte("y"))
	digestB := hb.Finalize()

	composite := factory.New()
	composite.Absorb(digestA)
	composite.Absorb(digestB)
	want := composite.Finalize()

	assert.Equal(t, want, digest)
}

// TestWalker_DeterminismAcrossThreadCounts verifies the digest of a
// directory is identical regardless of how many worker threads hashed it.
func TestWalker_DeterminismAcrossThreadCounts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{}
	for i := 0; i < 20; i++ {
		files[filepath.Join("dir", filepath.Base(t.TempDir())+".txt")] = "x"
	}
	writeTree(t, root, map[string]string{
		"a.txt":         "alpha",
		"sub/b.txt":     "beta",
		"sub/deep/c.go": "gamma",
		"d.bin":         "delta",
	})

	var digests [][]byte
	for _, n := range []int{1, 2, 8} {
		w := newWalker(t, root, func(b *walk.OptionsBuilder) { b.Threads(n) })
		require.NoError(t, w.Collect())
		d, err := w.Hash()
		require.NoError(t, err)
		digests = append(digests, d)
	}

	for i := 1; i < len(digests); i++ {
		assert.Equal(t, digests[0], digests[i], "digest must be identical regardless of thread count")
	}
}

// TestWalker_HashIsIdempotent verifies calling Hash twice on the same
// Walker returns the same digest when the files are unchanged between calls.
func TestWalker_HashIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x", "b.txt": "y"})

	w := newWalker(t, root, nil)
	require.NoError(t, w.Collect())

	d1, err := w.Hash()
	require.NoError(t, err)
	d2, err := w.Hash()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestWalker_CollectTwiceIsIllegalState(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})

	w := newWalker(t, root, nil)
	require.NoError(t, w.Collect())
	err := w.Collect()
	assert.ErrorIs(t, err, walk.ErrIllegalState)
}

func TestWalker_HashBeforeCollectIsIllegalState(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})

	w := newWalker(t, root, nil)
	_, err := w.Hash()
	assert.ErrorIs(t, err, walk.ErrIllegalState)
}

// TestWalker_ScenarioDispatchMatchesDirectStrategy verifies a size-bucketed
// Scenario strategy is stable and produces the same digest as a direct
// Buffer read of the same content (strategy dispatch never changes the
// bytes absorbed).
func TestWalker_ScenarioDispatchMatchesDirectStrategy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	small := make([]byte, 1024)
	for i := range small {
		small[i] = 0xFF
	}
	big := make([]byte, 2<<20)
	require.NoError(t, os.WriteFile(filepath.Join(root, "small.bin"), small, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.bin"), big, 0o644))

	scenario := walk.Scenario(
		walk.ScenarioRule{Range: walk.SizeRange{Min: 0, Max: 1 << 20}, Strategy: walk.MemoryMapped()},
		walk.ScenarioRule{Range: walk.SizeRange{Min: 1 << 20, Max: -1}, Strategy: walk.Buffer()},
	)

	w1 := newWalker(t, root, func(b *walk.OptionsBuilder) { b.Strategy(scenario) })
	require.NoError(t, w1.Collect())
	scenarioDigest, err := w1.Hash()
	require.NoError(t, err)

	w2 := newWalker(t, root, func(b *walk.OptionsBuilder) { b.Strategy(walk.Buffer()) })
	require.NoError(t, w2.Collect())
	bufferDigest, err := w2.Hash()
	require.NoError(t, err)

	assert.Equal(t, bufferDigest, scenarioDigest, "strategy dispatch must not change the digest")
}

// TestWalker_LogErrorsToleranceSkipsUnreadableFile verifies an unreadable
// file is ignored rather than aborting the whole run, and the digest
// reflects only the readable files.
func TestWalker_LogErrorsToleranceSkipsUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("requires enforceable file permission bits")
	}
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.txt": "z"})
	locked := filepath.Join(root, "locked.bin")
	require.NoError(t, os.WriteFile(locked, []byte("secret"), 0o644))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	w := newWalker(t, root, func(b *walk.OptionsBuilder) { b.ToleranceLevel(walk.LogErrors) })
	require.NoError(t, w.Collect())
	digest, err := w.Hash()
	require.NoError(t, err)

	factory, err := hashers.Factory(hashers.BLAKE3)
	require.NoError(t, err)
	h := factory.New()
	h.Absorb([]byte("z"))
	digestZ := h.Finalize()
	composite := factory.New()
	composite.Absorb(digestZ)
	want := composite.Finalize()

	assert.Equal(t, want, digest)

	ignored := w.Ignored()
	require.Len(t, ignored, 1)
	assert.Equal(t, locked, ignored[0].Path)
	assert.Equal(t, walk.KindReader, ignored[0].Kind)
}

// TestWalker_StopOnErrorsToleranceAbortsRun verifies the same injected
// error aborts the run and yields no digest.
func TestWalker_StopOnErrorsToleranceAbortsRun(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("requires enforceable file permission bits")
	}
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"ok.txt": "z"})
	locked := filepath.Join(root, "locked.bin")
	require.NoError(t, os.WriteFile(locked, []byte("secret"), 0o644))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o644) })

	w := newWalker(t, root, func(b *walk.OptionsBuilder) { b.ToleranceLevel(walk.StopOnErrors) })
	require.NoError(t, w.Collect())
	_, err := w.Hash()
	require.Error(t, err)

	var werr *walk.Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, walk.KindReader, werr.Kind)
}

// TestWalker_CancellationLiveness verifies that after Cancel(), a pending
// Collect returns Cancelled within bounded time.
func TestWalker_CancellationLiveness(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for i := 0; i < 500; i++ {
		writeTree(t, root, map[string]string{filepath.Join("d", "f.txt"): "x"})
	}
	writeTree(t, root, map[string]string{"seed.txt": "x"})

	w := newWalker(t, root, func(b *walk.OptionsBuilder) { b.Threads(1) })
	w.Cancel()

	done := make(chan error, 1)
	go func() { done <- w.Collect() }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, walk.ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not observe cancellation within bounded time")
	}
	assert.True(t, w.Cancelled())
}

func TestWalker_CancelIsIdempotentAndConcurrentSafe(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})
	w := newWalker(t, root, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Cancel()
		}()
	}
	wg.Wait()
	assert.True(t, w.Cancelled())
}

func TestWalker_DedupeRootsCollapsesOverlap(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})

	factory, err := hashers.Factory(hashers.BLAKE3)
	require.NoError(t, err)

	opts, err := walk.NewOptionsBuilder().
		Path(root).
		Path(root).
		Hasher(factory).
		ReaderFactory(readers.NewFactory()).
		DeduplicateRoots(true).
		Build()
	require.NoError(t, err)

	w := walk.NewWalker(opts)
	require.NoError(t, w.Collect())
	assert.Len(t, w.Collected(), 1, "overlapping roots collapse to one entry when DeduplicateRoots is set")
}

func TestWalker_ProgressDisabledByDefault(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x"})

	w := newWalker(t, root, nil)
	assert.Nil(t, w.Progress())
}

func TestWalker_ProgressReportsCollectedAndHashed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "x", "b.txt": "y"})

	w := newWalker(t, root, func(b *walk.OptionsBuilder) { b.Progress(16) })

	var sawCollected, sawHashed bool
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-w.Progress():
				if !ok {
					return
				}
				switch ev.Kind {
				case walk.ProgressCollected:
					sawCollected = true
				case walk.ProgressHashed:
					sawHashed = true
				}
			case <-stop:
				return
			}
		}
	}()

	require.NoError(t, w.Collect())
	_, err := w.Hash()
	require.NoError(t, err)
	close(stop)

	assert.True(t, sawCollected)
	assert.True(t, sawHashed)
}

var _ = context.Background // keep context import available for future cancellation-by-context style tests
