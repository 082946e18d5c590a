package field_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/field/fld"
	"github.com/OpenKore/openkore-sub004/field/gat"
)

type counter struct {
	blocks, dimensions int
}

func watch(f field.Field) *counter {
	c := &counter{}
	f.OnBlockChanged(func() { c.blocks++ })
	f.OnDimensionChanged(func() { c.dimensions++ })
	return c
}

func newField(t *testing.T, w, h int) *fld.Field {
	t.Helper()
	f, err := fld.New(w, h)
	require.NoError(t, err)
	return f
}

func TestSetBlockNotifiesImmediately(t *testing.T) {
	f := newField(t, 3, 2)
	c := watch(f)

	require.NoError(t, f.SetBlock(2, 1, field.WalkableWater))
	assert.Equal(t, 1, c.blocks)

	b, err := f.Block(2, 1)
	require.NoError(t, err)
	assert.Equal(t, field.WalkableWater, b)
}

func TestBatchCoalescesNotifications(t *testing.T) {
	f := newField(t, 4, 4)
	c := watch(f)

	f.BeginUpdate()
	for i := 0; i < 4; i++ {
		require.NoError(t, f.SetBlock(i, i, field.Walkable))
	}
	require.NoError(t, f.Resize(5, 5))
	require.NoError(t, f.Resize(6, 6))
	assert.Equal(t, 0, c.blocks)
	assert.Equal(t, 0, c.dimensions)
	require.NoError(t, f.EndUpdate())

	assert.Equal(t, 1, c.blocks)
	assert.Equal(t, 1, c.dimensions)
}

func TestNestedBatchFlushesOnOutermostEnd(t *testing.T) {
	f := newField(t, 2, 2)
	c := watch(f)

	f.BeginUpdate()
	f.BeginUpdate()
	require.NoError(t, f.SetBlock(0, 0, field.Walkable))
	require.NoError(t, f.EndUpdate())
	assert.Equal(t, 0, c.blocks)
	assert.True(t, f.Updating())

	require.NoError(t, f.SetBlock(1, 1, field.Walkable))
	require.NoError(t, f.EndUpdate())
	assert.Equal(t, 1, c.blocks)
	assert.Equal(t, 0, c.dimensions)
	assert.False(t, f.Updating())
}

func TestEmptyBatchDoesNotNotify(t *testing.T) {
	f := newField(t, 2, 2)
	c := watch(f)

	f.BeginUpdate()
	require.NoError(t, f.EndUpdate())
	assert.Equal(t, counter{}, *c)
}

func TestUnbalancedEndUpdate(t *testing.T) {
	f := newField(t, 1, 1)
	err := f.EndUpdate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, field.ErrPreconditionViolation))

	// the counter must not have gone negative
	c := watch(f)
	require.NoError(t, f.SetBlock(0, 0, field.Walkable))
	assert.Equal(t, 1, c.blocks)
}

func TestOutOfBounds(t *testing.T) {
	f := newField(t, 3, 2)
	for _, p := range []field.Point{{X: 3, Y: 0}, {X: 0, Y: 2}, {X: -1, Y: 0}, {X: 0, Y: -1}} {
		_, err := f.Block(p.X, p.Y)
		assert.True(t, errors.Is(err, field.ErrPreconditionViolation), "Block(%v)", p)
		err = f.SetBlock(p.X, p.Y, field.Walkable)
		assert.True(t, errors.Is(err, field.ErrPreconditionViolation), "SetBlock(%v)", p)
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	f := newField(t, 3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			require.NoError(t, f.SetBlock(x, y, field.BlockType((x+y)%3)))
		}
	}
	c := watch(f)

	require.NoError(t, f.Resize(2, 4))
	assert.Equal(t, 1, c.dimensions)
	assert.Equal(t, 2, f.Width())
	assert.Equal(t, 4, f.Height())

	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			b, err := f.Block(x, y)
			require.NoError(t, err)
			if y < 3 {
				assert.Equal(t, field.BlockType((x+y)%3), b, "(%d,%d)", x, y)
			} else {
				assert.Equal(t, field.DefaultFill, b, "(%d,%d)", x, y)
			}
		}
	}
}

func TestResizeSameSizeIsIdempotent(t *testing.T) {
	f := newField(t, 2, 2)
	require.NoError(t, f.SetBlock(1, 0, field.SnipableCliff))
	c := watch(f)

	require.NoError(t, f.Resize(4, 3))
	require.NoError(t, f.Resize(4, 3))
	assert.Equal(t, 1, c.dimensions)

	b, err := f.Block(1, 0)
	require.NoError(t, err)
	assert.Equal(t, field.SnipableCliff, b)
}

func TestResizeToZero(t *testing.T) {
	f := newField(t, 2, 2)
	require.NoError(t, f.Resize(0, 0))
	assert.Equal(t, 0, f.Width())
	assert.Equal(t, 0, f.Height())

	_, err := f.Block(0, 0)
	assert.True(t, errors.Is(err, field.ErrPreconditionViolation))
}

func TestResizeNegative(t *testing.T) {
	f := newField(t, 2, 2)
	err := f.Resize(-1, 2)
	assert.True(t, errors.Is(err, field.ErrPreconditionViolation))
	assert.Equal(t, 2, f.Width())
}

func TestSaveFileReadOnlyLeavesNothing(t *testing.T) {
	g, err := gat.Read(bytes.NewReader(gat.Magic[:]), nil)
	require.Error(t, err)
	assert.Nil(t, g)

	raw := append(gat.Magic[:], 0, 0, 0, 0, 0, 0, 0, 0)
	g, err = gat.Read(bytes.NewReader(raw), nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.fld")
	err = field.SaveFile(g, path)
	assert.True(t, errors.Is(err, field.ErrSaveNotSupported))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.fld")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0666))

	f := newField(t, 2, 1)
	require.NoError(t, field.SaveFile(f, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 1, 0, 1, 1}, data)
}

func TestSaveFileKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()
	f := newField(t, 1, 1)

	existing := filepath.Join(dir, "existing.fld")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0600))
	require.NoError(t, os.Chmod(existing, 0640))
	require.NoError(t, field.SaveFile(f, existing))
	st, err := os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), st.Mode().Perm())

	created := filepath.Join(dir, "created.fld")
	require.NoError(t, field.SaveFile(f, created))
	st, err = os.Stat(created)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(field.NewFileMode), st.Mode().Perm())
}

func TestCopy(t *testing.T) {
	src := newField(t, 2, 2)
	require.NoError(t, src.SetBlock(0, 1, field.NonSnipableCliff))
	dst := newField(t, 2, 2)
	c := watch(dst)

	require.NoError(t, field.Copy(dst, src))
	assert.Equal(t, 1, c.blocks)
	b, err := dst.Block(0, 1)
	require.NoError(t, err)
	assert.Equal(t, field.NonSnipableCliff, b)

	err = field.Copy(newField(t, 1, 1), src)
	assert.True(t, errors.Is(err, field.ErrPreconditionViolation))
}
