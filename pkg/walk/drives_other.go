//go:build !windows

package walk

// FixedDrives returns the file system root. Only Windows has drive letters.
func FixedDrives() ([]string, error) {
	return []string{"/"}, nil
}
