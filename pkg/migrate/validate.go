package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	upMarker        = "-- +goose Up"
	downMarker      = "-- +goose Down"
	stmtBeginMarker = "-- +goose StatementBegin"
	stmtEndMarker   = "-- +goose StatementEnd"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every migration in dir before goose sees it: file names,
// unique versions, Up ahead of Down and balanced statement blocks.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		full := filepath.Join(dir, name)
		body, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("read file %q: %w", full, err)
		}
		if err := checkSections(name, string(body)); err != nil {
			return err
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return nil
}

func checkSections(name, txt string) error {
	up := strings.Index(txt, upMarker)
	if up < 0 {
		return fmt.Errorf("migration %q missing %q", name, upMarker)
	}
	down := strings.Index(txt, downMarker)
	if down < 0 {
		return fmt.Errorf("migration %q missing %q", name, downMarker)
	}
	if down < up {
		return fmt.Errorf("migration %q has %q before %q", name, downMarker, upMarker)
	}

	open := false
	for _, line := range strings.Split(txt, "\n") {
		switch strings.TrimSpace(line) {
		case stmtBeginMarker:
			if open {
				return fmt.Errorf("migration %q opens a statement block twice", name)
			}
			open = true
		case stmtEndMarker:
			if !open {
				return fmt.Errorf("migration %q closes a statement block that was never opened", name)
			}
			open = false
		}
	}
	if open {
		return fmt.Errorf("migration %q has an unterminated statement block", name)
	}
	return nil
}
