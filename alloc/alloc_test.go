package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPopCnt(t *testing.T) {
	assert.Equal(t, uint64(0), popCnt(0))
	assert.Equal(t, uint64(1), popCnt(1))
	assert.Equal(t, uint64(1), popCnt(2))
	assert.Equal(t, uint64(2), popCnt(3))
	assert.Equal(t, uint64(8), popCnt(255))
}

func TestExhaustion(t *testing.T) {
	assert := assert.New(t)
	const max = uint64(32)
	bm := MkBitmap(make([]byte, 4), max)

	assert.Equal(max, bm.NumFree(), "everything should be initially free")

	for i := uint64(0); i < max; i++ {
		n, ok := bm.FindFree()
		assert.True(ok)
		bm.MarkUsed(n)
	}
	_, ok := bm.FindFree()
	assert.False(ok, "full bitmap should have no free slot")

	bm.Clear(17)
	n, ok := bm.FindFree()
	assert.True(ok, "freeing a slot should make allocation succeed again")
	assert.Equal(uint64(17), n)
	assert.Equal(uint64(1), bm.NumFree())
}

func TestScanSkipsUsed(t *testing.T) {
	bm := MkBitmap(make([]byte, 4), 32)
	bm.MarkUsed(0)
	bm.MarkUsed(1)
	bm.MarkUsed(3)
	n, ok := bm.FindFree()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), n, "scan should return the first clear bit")
}

// checkBitmap drives the bitmap against a map model.
func checkBitmap(t *rapid.T) {
	n := rapid.Uint64Range(1, 64).Draw(t, "n")
	bm := MkBitmap(make([]byte, 8), n)
	model := make(map[uint64]bool)

	actions := map[string]func(t *rapid.T){
		"alloc": func(t *rapid.T) {
			i, ok := bm.FindFree()
			if uint64(len(model)) == n {
				if ok {
					t.Fatalf("found free slot %d in a full bitmap", i)
				}
				return
			}
			if !ok {
				t.Fatalf("no free slot with %d of %d used", len(model), n)
			}
			if model[i] {
				t.Fatalf("slot %d already used", i)
			}
			bm.MarkUsed(i)
			model[i] = true
		},
		"free": func(t *rapid.T) {
			if len(model) == 0 {
				return
			}
			var keys []uint64
			for k := range model {
				keys = append(keys, k)
			}
			i := rapid.SampledFrom(keys).Draw(t, "slot")
			bm.Clear(i)
			delete(model, i)
		},
		"": func(t *rapid.T) {
			if got := bm.NumFree(); got != n-uint64(len(model)) {
				t.Fatalf("NumFree = %d, model says %d", got, n-uint64(len(model)))
			}
			for i := uint64(0); i < n; i++ {
				if bm.IsSet(i) != model[i] {
					t.Fatalf("bit %d disagrees with model", i)
				}
			}
		},
	}
	t.Repeat(actions)
}

func TestBitmapModel(t *testing.T) {
	rapid.Check(t, checkBitmap)
}
