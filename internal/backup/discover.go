package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// datedName matches the camera sync client's filename convention,
// e.g. "2016-08-21 14.05.39.jpg".
var datedName = regexp.MustCompile(`^(\d{4})-(\d{2})-\d{2}`)

// DiscoverSource lists files in the source directory whose names match
// <year>-<month>-*.<ext>, sorted by name. A missing source directory is an
// error; an existing but empty match set returns ErrNoMatchingFiles.
func DiscoverSource(sourceDir string, t Target, ext string) ([]string, error) {
	if _, err := os.Stat(sourceDir); err != nil {
		return nil, fmt.Errorf("source directory not accessible: %w", err)
	}

	pattern := filepath.Join(sourceDir, fmt.Sprintf("%s-%s-*.%s", t.Year, t.Month, ext))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s-%s-*.%s files in %s",
			ErrNoMatchingFiles, t.Year, t.Month, ext, sourceDir)
	}

	sort.Strings(files)
	return files, nil
}

// globStaged lists staged files matching the target pattern. Unlike
// DiscoverSource, a missing directory or an empty match set is not an
// error: staging may legitimately not exist yet.
func globStaged(stagingDir string, t Target, ext string) ([]string, error) {
	if _, err := os.Stat(stagingDir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("staging directory not accessible: %w", err)
	}

	pattern := filepath.Join(stagingDir, fmt.Sprintf("%s-%s-*.%s", t.Year, t.Month, ext))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// YearMonth is one year/month combination detected in the source folder.
type YearMonth struct {
	Year  string
	Month string
}

func (ym YearMonth) String() string { return ym.Year + "-" + ym.Month }

// DetectYearMonths scans the source directory for dated filenames and
// returns the distinct year/month combinations present, sorted ascending.
// Used when --year/--month are not given on the command line.
func DetectYearMonths(sourceDir string) ([]YearMonth, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	seen := make(map[YearMonth]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := datedName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		seen[YearMonth{Year: m[1], Month: m[2]}] = struct{}{}
	}

	combos := make([]YearMonth, 0, len(seen))
	for ym := range seen {
		combos = append(combos, ym)
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].Year != combos[j].Year {
			return combos[i].Year < combos[j].Year
		}
		return combos[i].Month < combos[j].Month
	})
	return combos, nil
}
