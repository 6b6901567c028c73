package mmap

// align rounds offset down to a multiple of granularity. base is the offset
// handed to the platform and delta the distance from base to the requested
// offset. The same delta locates the caller's bytes inside the padded region
// and is never recomputed from the view address.
func align(offset int64, granularity int) (base int64, delta int) {
	delta = int(offset % int64(granularity))
	return offset - int64(delta), delta
}
