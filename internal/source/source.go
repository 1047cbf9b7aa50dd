// Package source loads preprocessed C source into memory for the
// lexer. It owns no long-lived handles: the file is read fully and
// closed before the buffer is handed off.
package source

import "os"

// Read loads the file at path fully into memory.
func Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
