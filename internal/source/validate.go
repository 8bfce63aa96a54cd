package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
)

// ValidateDir checks that dir is a directory holding every input file.
// All missing files are reported together.
func ValidateDir(dir string, inputs []string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return core.InputUnavailable("", dir, fmt.Errorf("the directory %q does not exist", dir))
	}
	if !info.IsDir() {
		return core.InputUnavailable("", dir, fmt.Errorf("%q is not a directory", dir))
	}

	var errs []error
	for _, name := range inputs {
		path := filepath.Join(dir, name)
		fi, err := os.Stat(path)
		switch {
		case err != nil:
			errs = append(errs, core.InputUnavailable("", name, fmt.Errorf("the file %q does not exist", path)))
		case !fi.Mode().IsRegular():
			errs = append(errs, core.InputUnavailable("", name, fmt.Errorf("%q is not a regular file", path)))
		}
	}
	return errors.Join(errs...)
}
