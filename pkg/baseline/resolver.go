// Package baseline resolves which stored baseline document applies to a
// benchmark run: an explicit override path, a platform-specific default,
// or a generic fallback. A missing file at the resolved path is not an
// error here; whether "absent" fails the run is the strict-mode gate's
// decision, not the resolver's.
package baseline

import (
	"os"
	"path/filepath"

	"github.com/benchgate/benchgate/pkg/report"
	"github.com/pkg/errors"
)

// DefaultDir is the well-known baseline directory relative to the repo
// root. One baseline file exists per (platform, mode) pair.
const DefaultDir = "benchmark/baselines"

// Resolution sources, in precedence order.
const (
	SourceOverride = "override"
	SourcePlatform = "platform"
	SourceFallback = "fallback"
)

// fallbackPlatform is the file prefix used when the host OS is not one
// of the recognized platforms.
const fallbackPlatform = "default"

// platformSuffix maps an OS identifier to a baseline file prefix.
// Exactly three platforms are recognized; everything else lands on the
// explicit fallback arm rather than being silently misrouted.
func platformSuffix(goos string) string {
	switch goos {
	case "linux":
		return "linux"
	case "darwin":
		return "darwin"
	case "windows":
		return "windows"
	default:
		return fallbackPlatform
	}
}

// PathFor returns the baseline path for a (platform, mode) pair inside
// dir, e.g. benchmark/baselines/linux-synthetic.json.
func PathFor(goos, mode, dir string) string {
	return filepath.Join(dir, platformSuffix(goos)+"-"+mode+".json")
}

// Resolution is the outcome of baseline selection: the path that was
// searched, how it was chosen, and the loaded document when one exists.
type Resolution struct {
	Path   string
	Source string
	Found  bool
	Doc    *report.Document
}

// Resolve selects the baseline path by strict precedence (explicit
// override, then platform default, then generic fallback) and loads the
// document if the file exists. The override, when set, is always chosen
// regardless of which files exist on disk.
func Resolve(override, dir, mode, goos string) (Resolution, error) {
	res := Resolution{}
	if override != "" {
		res.Path = override
		res.Source = SourceOverride
	} else {
		res.Path = PathFor(goos, mode, dir)
		if platformSuffix(goos) == fallbackPlatform {
			res.Source = SourceFallback
		} else {
			res.Source = SourcePlatform
		}
	}

	if _, err := os.Stat(res.Path); err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return res, errors.Wrapf(err, "stat baseline %s", res.Path)
	}

	doc, err := report.Load(res.Path)
	if err != nil {
		return res, err
	}
	res.Found = true
	res.Doc = doc
	return res, nil
}
