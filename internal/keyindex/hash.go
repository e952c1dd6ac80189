package keyindex

// hashKey は連番キーでもバケットが偏らないよう 64bit を攪拌します (murmur3 fmix64)。
func hashKey(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

// BucketsFor は n 要素を負荷率 1 前後で収めるバケット数 (2 の冪) を返します。
func BucketsFor(n int) int {
	if n < MinBuckets {
		return MinBuckets
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	n++
	return n
}
