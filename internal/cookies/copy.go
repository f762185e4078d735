package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SafeCopy copies a SQLite cookie file (and its -wal and -shm companions if
// they exist) to a temporary directory so the browser that owns the database
// is never locked out.
//
// The caller must call cleanup when done.
func SafeCopy(srcPath string) (tempDir string, cleanup func(), err error) {
	if err := checkCookieFile(srcPath); err != nil {
		return "", nil, err
	}

	tempDir, err = os.MkdirTemp("", "cookiewatch-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("error: cannot create temp directory: %w", err)
	}
	cleanup = func() {
		os.RemoveAll(tempDir)
	}

	baseName := filepath.Base(srcPath)
	if err := copyFile(srcPath, filepath.Join(tempDir, baseName)); err != nil {
		cleanup()
		return "", nil, err
	}
	// companions are best-effort
	for _, suffix := range []string{"-wal", "-shm"} {
		companion := srcPath + suffix
		if _, err := os.Stat(companion); err == nil {
			_ = copyFile(companion, filepath.Join(tempDir, baseName+suffix))
		}
	}
	return tempDir, cleanup, nil
}

// checkCookieFile rejects missing, directory and empty paths.
func checkCookieFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error: cookie file not found: %s", path)
	}
	if info.IsDir() {
		return fmt.Errorf("error: %s is a directory, expected a cookie file path or 'auto'", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("error: cookie file at %s is empty or corrupted", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error: cannot open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error: cannot create destination file %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("error: cannot copy file: %w", err)
	}
	return nil
}
