package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

const lockFileName = ".reelpress.lock"

// Area is one job's staging directory together with its held lock.
type Area struct {
	dir  string
	lock *flock.Flock
}

// Create makes a fresh job directory under root and locks it. The directory
// name embeds a timestamp so stale-cleanup ordering is obvious from a plain
// listing.
func Create(root string) (*Area, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("staging root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}

	name := fmt.Sprintf("job-%d-%s", time.Now().UnixMilli(), shortID())
	dir := filepath.Join(root, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		_ = os.RemoveAll(dir)
		return nil, errors.New("staging dir already locked")
	}

	return &Area{dir: dir, lock: lock}, nil
}

// Dir returns the absolute path of the staging directory.
func (a *Area) Dir() string {
	return a.dir
}

// Remove releases the lock and deletes the directory tree. Safe to call more
// than once.
func (a *Area) Remove() error {
	if a == nil || a.dir == "" {
		return nil
	}
	if a.lock != nil {
		_ = a.lock.Unlock()
		a.lock = nil
	}
	err := os.RemoveAll(a.dir)
	a.dir = ""
	return err
}

// Locked reports whether dir currently holds an active lock from another
// process or area.
func Locked(dir string) bool {
	lockPath := filepath.Join(dir, lockFileName)
	if _, err := os.Stat(lockPath); err != nil {
		return false
	}
	probe := flock.New(lockPath)
	ok, err := probe.TryLock()
	if err != nil || !ok {
		return true
	}
	_ = probe.Unlock()
	return false
}

func shortID() string {
	id := uuid.NewString()
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}
