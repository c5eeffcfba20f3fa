// Package alloc is a linear-scan bitmap over a byte slice. Bit state is
// the only state: bit i set means slot i is used. Persistence and
// locking belong to the owner of the bytes (the superblock).
package alloc

// Bitmap tracks free/used state for n slots inside bits. The slice is
// aliased, not copied, so the owner sees mutations directly.
type Bitmap struct {
	bits []byte
	n    uint64
}

func MkBitmap(bits []byte, n uint64) *Bitmap {
	if n > uint64(len(bits))*8 {
		panic("bitmap: slot count exceeds backing bytes")
	}
	return &Bitmap{bits: bits, n: n}
}

func (bm *Bitmap) IsSet(i uint64) bool {
	if i >= bm.n {
		panic("bitmap: slot out of range")
	}
	return bm.bits[i/8]&(1<<(i%8)) != 0
}

func (bm *Bitmap) MarkUsed(i uint64) {
	if i >= bm.n {
		panic("bitmap: slot out of range")
	}
	bm.bits[i/8] |= 1 << (i % 8)
}

func (bm *Bitmap) Clear(i uint64) {
	if i >= bm.n {
		panic("bitmap: slot out of range")
	}
	bm.bits[i/8] &^= 1 << (i % 8)
}

// FindFree scans from slot 0 upward for the first clear bit. It does
// not mark the bit; a caller that needs scan-then-set atomicity must
// hold the owner's lock across both.
func (bm *Bitmap) FindFree() (uint64, bool) {
	for i := uint64(0); i < bm.n; i++ {
		if bm.bits[i/8]&(1<<(i%8)) == 0 {
			return i, true
		}
	}
	return 0, false
}

func (bm *Bitmap) NumFree() uint64 {
	var used uint64
	full := bm.n / 8
	for _, b := range bm.bits[:full] {
		used += popCnt(b)
	}
	for i := full * 8; i < bm.n; i++ {
		if bm.IsSet(i) {
			used++
		}
	}
	return bm.n - used
}

func popCnt(b byte) uint64 {
	var n uint64
	for b != 0 {
		n += uint64(b & 1)
		b >>= 1
	}
	return n
}
