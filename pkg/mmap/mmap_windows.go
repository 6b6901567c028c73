//go:build windows

package mmap

import (
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// systemInfo mirrors SYSTEM_INFO.
type systemInfo struct {
	processorArchitecture     uint16
	reserved                  uint16
	pageSize                  uint32
	minimumApplicationAddress uintptr
	maximumApplicationAddress uintptr
	activeProcessorMask       uintptr
	numberOfProcessors        uint32
	processorType             uint32
	allocationGranularity     uint32
	processorLevel            uint16
	processorRevision         uint16
}

var (
	procGetSystemInfo = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetSystemInfo")

	allocationGranularity = sync.OnceValue(func() int {
		var info systemInfo
		procGetSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
		if info.allocationGranularity == 0 {
			return 64 * 1024
		}
		return int(info.allocationGranularity)
	})
)

// granularity is the allocation granularity, not the page size: views must
// start on it and UnmapViewOfFile must receive that exact base address.
func granularity() int {
	return allocationGranularity()
}

func osMap(f *os.File, base int64, length int) ([]byte, func([]byte) error, error) {
	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view holds its own reference to the section.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ,
		uint32(uint64(base)>>32), uint32(uint64(base)&0xffffffff), uintptr(length))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), length)
	return data, func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osAdvise(data []byte, pattern AccessPattern) error {
	return nil
}
