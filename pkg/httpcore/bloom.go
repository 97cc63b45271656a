package httpcore

// bloomFilter is a fixed-size probabilistic set over lower-cased header
// key bytes. It exists to let Request.Header skip the linear scan over
// headers[] for names that provably were not present on the wire.
// False positives are fine; false negatives would drop real headers and
// are not allowed.
//
// 64 bits and two hash lanes is the same shape as the tiny inline bloom
// filters real HTTP/1 request parsers use to accelerate header lookup
// (e.g. needing only "is there any chance a Host header exists" before
// bothering to scan); a request rarely carries more than a few dozen
// distinct header names, so the false-positive rate stays low without
// needing a bigger filter.
type bloomFilter uint64

func (b *bloomFilter) reset() {
	*b = 0
}

func (b *bloomFilter) add(key []byte) {
	h1, h2 := bloomHash(key)
	*b |= bloomFilter(1) << (h1 & 63)
	*b |= bloomFilter(1) << (h2 & 63)
}

func (b *bloomFilter) mightHave(key []byte) bool {
	h1, h2 := bloomHash(key)
	mask := bloomFilter(1)<<(h1&63) | bloomFilter(1)<<(h2&63)
	return *b&mask == mask
}

// bloomHash produces two cheap, distinct hash lanes from a byte slice
// using an FNV-1a-style recurrence: the first lane is FNV-1a proper, the
// second uses a different seed and a different multiplier. Header keys are
// short (almost always well under 64 bytes), so a byte-at-a-time hash is
// not a hot-path concern.
func bloomHash(key []byte) (uint32, uint32) {
	var h1 uint32 = 2166136261
	var h2 uint32 = 84696351
	for _, c := range key {
		h1 = (h1 ^ uint32(c)) * 16777619
		h2 = (h2 ^ uint32(c)) * 2654435761
	}
	return h1, h2
}
