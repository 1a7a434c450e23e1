package walk

// driveLetters returns the roots of the drives set in a GetLogicalDrives
// bit mask, bit 0 being A:.
func driveLetters(mask uint32) []string {
	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			roots = append(roots, string(rune('A'+i))+`:\`)
		}
	}
	return roots
}
