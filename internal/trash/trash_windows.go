//go:build windows

package trash

import (
	"fmt"
	"path/filepath"
	"syscall"
	"unsafe"

	"github.com/justyntemme/glance/internal/errors"
)

var (
	shell32                = syscall.NewLazyDLL("shell32.dll")
	procSHFileOperationW   = shell32.NewProc("SHFileOperationW")
	procSHEmptyRecycleBinW = shell32.NewProc("SHEmptyRecycleBinW")
)

type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

const (
	foDelete          = 0x0003
	fofAllowUndo      = 0x0040
	fofNoConfirmation = 0x0010
	fofNoErrorUI      = 0x0400
	fofSilent         = 0x0004

	sherbNoConfirmation = 0x00000001
	sherbNoProgressUI   = 0x00000002
	sherbNoSound        = 0x00000004
)

// RecycleBin uses the shell API. Listing is not supported.
type RecycleBin struct{}

// Default returns the Windows Recycle Bin.
func Default() (Bin, error) {
	return RecycleBin{}, nil
}

func (RecycleBin) DisplayName() string {
	return "Recycle Bin"
}

func (RecycleBin) MoveToTrash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "trash", path)
	}
	// pFrom must be double-null-terminated.
	from, err := syscall.UTF16PtrFromString(absPath + "\x00")
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "trash", path)
	}
	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  from,
		fFlags: fofAllowUndo | fofNoConfirmation | fofNoErrorUI | fofSilent,
	}
	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return errors.Wrap(fmt.Errorf("SHFileOperationW failed with code %d", ret), errors.OperationFailure, "trash", absPath)
	}
	if op.fAnyOperationsAborted != 0 {
		return errors.New(errors.OperationFailure, "trash: operation was aborted")
	}
	return nil
}

func (RecycleBin) List() ([]Item, error) {
	return nil, errors.New(errors.OperationFailure, "listing the Recycle Bin is not supported")
}

func (RecycleBin) Empty() error {
	// A non-zero result usually means the bin was already empty.
	procSHEmptyRecycleBinW.Call(0, 0, sherbNoConfirmation|sherbNoProgressUI|sherbNoSound)
	return nil
}
