//go:build unix

package mmap

import (
	"os"

	"golang.org/x/sys/unix"
)

func granularity() int {
	return unix.Getpagesize()
}

func osMap(f *os.File, base int64, length int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(int(f.Fd()), base, length, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, unix.Munmap, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}
	return unix.Madvise(data, advice)
}
