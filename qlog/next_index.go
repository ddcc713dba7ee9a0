package qlog

import (
	"fmt"
	"os"
	"path/filepath"
)

// ReserveLogDir allocates a fresh, exclusively-owned directory under
// root/controllerLabel/{client,server}/ named "c<N>" or "s<N>" (N >= 1),
// and returns its path. When the existing indices run contiguously from 1,
// N is the smallest free one; if there are gaps, the boundary search below
// may land past the first gap and return a larger free N. It is grounded on
// aioquic's examples/server.py next_path helper (spec's supplemented
// feature #1), with one correction: next_path there does an existence
// check followed by a separate mkdir, which races if two processes probe
// the same index concurrently. Here the existence check is only used to
// locate a *candidate* index quickly (exponential probe, then binary
// search for the exists/not-exists boundary); the directory is actually
// reserved by os.Mkdir, whose ErrExist return is what decides whether
// the candidate was really free. Losing that race just restarts the
// search instead of returning the wrong path to two callers.
func ReserveLogDir(root, controllerLabel string, isClient bool) (string, error) {
	role := "server"
	prefix := "s"
	if isClient {
		role = "client"
		prefix = "c"
	}
	base := filepath.Join(root, controllerLabel, role)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}

	for {
		n, err := findFreeIndex(base, prefix)
		if err != nil {
			return "", err
		}
		path := indexPath(base, prefix, n)
		if err := os.Mkdir(path, 0o755); err == nil {
			return path, nil
		} else if !os.IsExist(err) {
			return "", err
		}
		// Another caller reserved n between the probe and the Mkdir;
		// look again.
	}
}

func findFreeIndex(base, prefix string) (int, error) {
	lo := 0
	hi := 1
	for {
		exists, err := dirExists(indexPath(base, prefix, hi))
		if err != nil {
			return 0, err
		}
		if !exists {
			break
		}
		lo = hi
		hi *= 2
	}
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		exists, err := dirExists(indexPath(base, prefix, mid))
		if err != nil {
			return 0, err
		}
		if exists {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

func dirExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func indexPath(base, prefix string, n int) string {
	return filepath.Join(base, fmt.Sprintf("%s%d", prefix, n))
}
