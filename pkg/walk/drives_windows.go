//go:build windows

package walk

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"
)

// FixedDrives returns the roots of the fixed logical drives, such as C:\.
func FixedDrives() ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, errors.Wrap(err, "GetLogicalDrives")
	}

	var fixed []string
	for _, root := range driveLetters(mask) {
		p, err := windows.UTF16PtrFromString(root)
		if err != nil {
			return nil, errors.Wrapf(err, "drive %s", root)
		}
		if windows.GetDriveType(p) == windows.DRIVE_FIXED {
			fixed = append(fixed, root)
		}
	}
	return fixed, nil
}
