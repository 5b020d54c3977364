package colorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryMatchesBitsPerPixel(t *testing.T) {
	sizes := [][2]int{{720, 480}, {1920, 1080}, {16, 16}, {64, 2}}
	for _, d := range catalog {
		for _, s := range sizes {
			g, err := NewGeometry(d, s[0], s[1])
			require.NoError(t, err)
			assert.Equal(t, s[0]*s[1]*d.BitsPerPixel()/8, g.FrameSize(), "%v %vx%v", d.Name, s[0], s[1])
		}
	}
}

func TestGeometryPlanes(t *testing.T) {
	g, err := NewGeometry(Lookup(YV12), 720, 480)
	require.NoError(t, err)
	require.Len(t, g.Planes, 3)
	assert.Equal(t, PlaneGeometry{Width: 720, Height: 480, RowSize: 720, Size: 345600}, g.Planes[0])
	assert.Equal(t, PlaneGeometry{Width: 360, Height: 240, RowSize: 360, Size: 86400}, g.Planes[1])
	assert.Equal(t, g.Planes[1], g.Planes[2])
	assert.Equal(t, 518400, g.FrameSize())

	g, err = NewGeometry(Lookup(YUVA420P16), 8, 4)
	require.NoError(t, err)
	require.Len(t, g.Planes, 4)
	assert.Equal(t, 16, g.Planes[0].RowSize)
	assert.Equal(t, 8, g.Planes[1].RowSize)
	assert.Equal(t, 2, g.Planes[1].Height)
	assert.Equal(t, g.Planes[0], g.Planes[3])

	g, err = NewGeometry(Lookup(RGB24), 10, 3)
	require.NoError(t, err)
	require.Len(t, g.Planes, 1)
	assert.Equal(t, 30, g.Planes[0].RowSize)
	assert.Equal(t, 90, g.FrameSize())
}

func TestGeometryIdempotent(t *testing.T) {
	a, err := NewGeometry(Lookup(YV411), 704, 576)
	require.NoError(t, err)
	b, err := NewGeometry(Lookup(YV411), 704, 576)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeometryErrors(t *testing.T) {
	_, err := NewGeometry(Unknown, 16, 16)
	assert.ErrorIs(t, err, ErrUnknownColorspace)

	_, err = NewGeometry(Lookup(YV12), 0, 16)
	assert.Error(t, err)
}
