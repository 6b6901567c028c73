package types

import "unicode/utf8"

// ComputeLineColumn computes line and column numbers from a byte offset in content.
// Lines and columns are 1-indexed (first line is 1, first column is 1).
// Columns count UTF-8 characters; an invalid byte counts as one column.
func ComputeLineColumn(content []byte, byteOffset int) (line, column int) {
	line = 1
	column = 1
	if byteOffset > len(content) {
		byteOffset = len(content)
	}
	for i := 0; i < byteOffset; {
		if content[i] == '\n' {
			line++
			column = 1
			i++
			continue
		}
		_, size := utf8.DecodeRune(content[i:byteOffset])
		i += size
		column++
	}
	return line, column
}
