package formats

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenKore/openkore-sub004/config"
	"github.com/OpenKore/openkore-sub004/field"
	"github.com/OpenKore/openkore-sub004/field/fld"
	"github.com/OpenKore/openkore-sub004/field/fldgz"
	"github.com/OpenKore/openkore-sub004/field/gat"
)

func writeGat(t *testing.T, path string, depth float32, typ uint8) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(gat.Magic[:])
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	for i := 0; i < 4; i++ {
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(depth))
	}
	buf.Write([]byte{typ, 0, 0, 0})
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0666))
}

func writeRsw(t *testing.T, path string, waterLevel float32) {
	t.Helper()
	raw := make([]byte, config.DefaultWaterLevelOffset+4)
	copy(raw, "GRSW")
	binary.LittleEndian.PutUint32(raw[config.DefaultWaterLevelOffset:], math.Float32bits(waterLevel))
	require.NoError(t, os.WriteFile(path, raw, 0666))
}

func TestLoadGatWithoutCompanion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.gat")
	writeGat(t, path, 50, 1)

	f, warning, err := NewRegistry().Load(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.NotEmpty(t, warning)
	assert.Contains(t, warning, "map.rsw")

	b, err := f.Block(0, 0)
	require.NoError(t, err)
	assert.Equal(t, field.NonWalkable, b)
}

func TestLoadGatWithCompanion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.gat")
	writeGat(t, path, 50, 1)
	writeRsw(t, filepath.Join(dir, "map.rsw"), 10)

	f, warning, err := NewRegistry().Load(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Empty(t, warning)

	b, err := f.Block(0, 0)
	require.NoError(t, err)
	assert.Equal(t, field.NonWalkableNonSnipableWater, b)
}

func TestLoadGatBrokenCompanion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.gat")
	writeGat(t, path, 50, 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.rsw"), []byte("GRSW"), 0666))

	f, warning, err := NewRegistry().Load(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.NotEmpty(t, warning)
}

func TestLoadUpperCaseExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MAP.GAT")
	writeGat(t, path, 50, 0)
	writeRsw(t, filepath.Join(dir, "MAP.RSW"), 10)

	f, warning, err := NewRegistry().Load(path)
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.IsType(t, &gat.Field{}, f)

	fldPath := filepath.Join(dir, "OTHER.FLD.GZ")
	src, err := fldgz.New(2, 2)
	require.NoError(t, err)
	require.NoError(t, field.SaveFile(src, fldPath))

	f, _, err = NewRegistry().Load(fldPath)
	require.NoError(t, err)
	assert.IsType(t, &fldgz.Field{}, f)
}

func TestCompanionPath(t *testing.T) {
	assert.Equal(t, "data/prontera.rsw", CompanionPath("data/prontera.gat"))
	assert.Equal(t, "data/PRONTERA.RSW", CompanionPath("data/PRONTERA.GAT"))
}

func TestLoadDense(t *testing.T) {
	dir := t.TempDir()
	src, err := fld.New(3, 1)
	require.NoError(t, err)
	require.NoError(t, src.SetBlock(2, 0, field.Walkable))

	path := filepath.Join(dir, "map.fld")
	require.NoError(t, field.SaveFile(src, path))

	f, warning, err := NewRegistry().Load(path)
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.IsType(t, &fld.Field{}, f)
	b, _ := f.Block(2, 0)
	assert.Equal(t, field.Walkable, b)
}

func TestLoadErrorReturnsNilField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.fld")
	require.NoError(t, os.WriteFile(path, []byte{9, 0}, 0666))

	f, _, err := NewRegistry().Load(path)
	assert.True(t, errors.Is(err, field.ErrTruncatedData))
	assert.True(t, f == nil, "expected untyped nil field")
}

func TestLoadNoCodec(t *testing.T) {
	f, warning, err := NewRegistry().Load("map.txt")
	assert.NoError(t, err)
	assert.Nil(t, f)
	assert.Empty(t, warning)
}

func TestRegistryProbeOrder(t *testing.T) {
	var probed []string
	codec := func(name string, accept bool) Codec {
		return CodecFuncs{
			Handles: func(path string) bool {
				probed = append(probed, name)
				return accept
			},
			Loader: func(path string) (field.Field, string, error) {
				f, err := fld.New(1, 1)
				return f, name, err
			},
		}
	}

	r := NewRegistry()
	r.Register(codec("first", false))
	r.Register(codec("second", true))
	r.Register(codec("third", true))

	f, warning, err := r.Load("map.custom")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "second", warning)
	assert.Equal(t, []string{"first", "second"}, probed)
}

func TestRegistryBuiltinsWin(t *testing.T) {
	r := NewRegistry()
	r.Register(CodecFuncs{
		Handles: func(path string) bool { return true },
		Loader: func(path string) (field.Field, string, error) {
			return nil, "", errors.New("must not be called")
		},
	})

	path := filepath.Join(t.TempDir(), "map.fld")
	require.NoError(t, os.WriteFile(path, []byte{1, 0, 1, 0, 0}, 0666))
	f, _, err := r.Load(path)
	require.NoError(t, err)
	assert.IsType(t, &fld.Field{}, f)
}

func TestRegisterDuplicate(t *testing.T) {
	calls := 0
	c := CodecFuncs{
		Handles: func(path string) bool { calls++; return false },
		Loader:  func(path string) (field.Field, string, error) { return nil, "", nil },
	}
	r := NewRegistry()
	r.Register(c)
	r.Register(c)
	assert.Len(t, r.Codecs(), 2)

	f, _, err := r.Load("x.unknown")
	assert.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, 2, calls)
}

func TestHandles(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Handles("a.FLD"))
	assert.True(t, r.Handles("a.fld.gz"))
	assert.True(t, r.Handles("a.gat"))
	assert.False(t, r.Handles("a.rsw"))

	r.Register(CodecFuncs{
		Handles: func(path string) bool { return strings.HasSuffix(path, ".rsw") },
		Loader:  func(path string) (field.Field, string, error) { return nil, "", nil },
	})
	assert.True(t, r.Handles("a.rsw"))
}

func TestDefaultRegistry(t *testing.T) {
	before := len(Default().Codecs())
	Register(CodecFuncs{
		Handles: func(path string) bool { return strings.HasSuffix(path, ".default-test") },
		Loader: func(path string) (field.Field, string, error) {
			f, err := fld.New(2, 2)
			return f, "", err
		},
	})
	assert.Len(t, Default().Codecs(), before+1)

	f, _, err := Load("whatever.default-test")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Width())
}

func TestSaveAsConverts(t *testing.T) {
	dir := t.TempDir()
	gatPath := filepath.Join(dir, "map.gat")
	writeGat(t, gatPath, 0, 5)

	g, _, err := NewRegistry().Load(gatPath)
	require.NoError(t, err)

	for _, name := range []string{"out.fld", "out.fld.gz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveAs(g, path), name)

		f, _, err := NewRegistry().Load(path)
		require.NoError(t, err, name)
		b, err := f.Block(0, 0)
		require.NoError(t, err)
		assert.Equal(t, field.SnipableCliff, b, name)
	}

	err = SaveAs(g, filepath.Join(dir, "copy.gat"))
	assert.True(t, errors.Is(err, field.ErrSaveNotSupported))
	_, err = os.Stat(filepath.Join(dir, "copy.gat"))
	assert.True(t, os.IsNotExist(err))
}
