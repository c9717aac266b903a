package buffer

import (
	"testing"

	"github.com/ncw/directio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocDefaultBlock(t *testing.T) {
	b, err := Alloc(directio.BlockSize, directio.AlignSize)
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, directio.BlockSize, b.Len())
	assert.Equal(t, directio.AlignSize, b.Align())
	assert.True(t, IsAligned(b.Bytes(), directio.AlignSize))
}

func TestIsAlignedAgreesWithDirectioBlocks(t *testing.T) {
	// directio.AlignedBlock panics if it cannot align, so its blocks are
	// a reference point for IsAligned
	ref := directio.AlignedBlock(2 * directio.BlockSize)

	assert.True(t, IsAligned(ref, directio.AlignSize))
	assert.False(t, IsAligned(ref[1:directio.BlockSize+1], directio.AlignSize))
	assert.True(t, IsAligned(ref[directio.BlockSize:], directio.AlignSize))
}

func TestAllocIsZeroFilled(t *testing.T) {
	b, err := Alloc(8192, 4096)
	require.NoError(t, err)
	defer b.Release()

	for i, v := range b.Bytes() {
		if v != 0 {
			t.Fatalf("byte %d is %d, want 0", i, v)
		}
	}
}

func TestAllocLargerThanPage(t *testing.T) {
	const align = 1 << 16
	b, err := Alloc(2*align, align)
	require.NoError(t, err)
	defer b.Release()

	assert.Equal(t, 2*align, b.Len())
	assert.True(t, IsAligned(b.Bytes(), align))
	assert.Equal(t, b.Len(), cap(b.Bytes()))
}

func TestAllocRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		align int
	}{
		{"zero size", 0, 4096},
		{"size not multiple", 4096 + 1, 4096},
		{"zero alignment", 4096, 0},
		{"alignment not power of two", 6000, 3000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Alloc(tc.size, tc.align)

			assert.Nil(t, b)
			assert.ErrorIs(t, err, ErrAllocation)
		})
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	b, err := Alloc(4096, 4096)
	require.NoError(t, err)
	b.Bytes()[0] = 0xff

	require.NoError(t, b.Release())
	assert.True(t, b.Released())
	assert.Nil(t, b.Bytes())
	assert.NoError(t, b.Release())
}

func TestZero(t *testing.T) {
	b, err := Alloc(4096, 512)
	require.NoError(t, err)
	defer b.Release()
	for i := range b.Bytes() {
		b.Bytes()[i] = 0xab
	}

	b.Zero()

	assert.Equal(t, make([]byte, 4096), b.Bytes())
}

func TestIsAligned(t *testing.T) {
	b, err := Alloc(8192, 4096)
	require.NoError(t, err)
	defer b.Release()

	assert.True(t, IsAligned(b.Bytes()[4096:], 4096))
	assert.False(t, IsAligned(b.Bytes()[1:4097], 4096))
	assert.False(t, IsAligned(b.Bytes()[:100], 4096))
	assert.False(t, IsAligned(nil, 4096))
}
