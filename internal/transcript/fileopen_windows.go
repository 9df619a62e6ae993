//go:build windows

package transcript

import (
	"os"

	"github.com/hpungsan/panelist/internal/errors"
)

// openNoFollow opens a file for writing. O_NOFOLLOW does not exist on Windows.
func openNoFollow(path string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flag, perm)
}

// openNoFollowRead opens a transcript for reading. A missing file is NOT_FOUND.
func openNoFollowRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(path)
		}
		return nil, errors.NewInternal(err)
	}
	return f, nil
}
