package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T
	return ReadConfigOver(name, out)
}

// ReadConfigOver is ReadConfig with every file decoded on top of base, so
// fields a file leaves out keep their base value and fields a file sets,
// zero values included, replace it.
func ReadConfigOver[T any](name string, base T) (T, error) {
	out := base
	allNotFound := true

	dirname := filepath.Dir(name)
	basename := filepath.Base(name)
	prefixname, ext := splitExt(basename)

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return base, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := filepath.Join(
		dirname,
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return base, err
	}
	if len(localFile) > 0 {
		err = json5.Unmarshal(localFile, &out)
		if err != nil {
			return base, fmt.Errorf("parse %s: %w", localFilepath, err)
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return base, os.ErrNotExist
	}

	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var out T
	return ReadRecursivelyOver(name, out)
}

// ReadRecursivelyOver is ReadRecursively decoding on top of base, see
// ReadConfigOver.
func ReadRecursivelyOver[T any](name string, base T) (T, error) {
	root, err := filepath.Abs("/")
	if err != nil {
		return base, err
	}
	current, err := os.Getwd()
	if err != nil {
		return base, err
	}

	for {
		config, err := ReadConfigOver(filepath.Join(current, name), base)
		if os.IsNotExist(err) {
			if current == root {
				break
			}
			current = filepath.Dir(current)
			continue
		}
		if err != nil {
			return base, err
		}

		return config, nil
	}

	return base, os.ErrNotExist
}
