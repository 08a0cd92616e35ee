package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// Sanitize takes raw collection entries and returns an equivalent mapping
// with malformed entries dropped or fixed. Entries that are not objects, or
// that are missing a usable file reference or file kind, are dropped; course
// codes are re-normalized. It never fails: garbage in, smaller mapping out.
func Sanitize(raw map[string]json.RawMessage, logger *slog.Logger) map[string]domain.Record {
	clean := make(map[string]domain.Record, len(raw))
	for key, entry := range raw {
		var rec domain.Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("dropping undecodable record",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !rec.WellFormed() {
			logger.Warn("dropping malformed record",
				slog.String("key", key),
				slog.String("course_code", rec.CourseCode),
			)
			continue
		}
		rec.CourseCode = domain.NormalizeCourseCode(rec.CourseCode)
		clean[key] = rec
	}
	return clean
}

// RepairFile normalizes one on-disk collection file in place. Invoked once at
// startup before the store is first read. A missing file is left alone; a
// file whose top level is not a JSON object is reset to an empty collection.
func RepairFile(path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	reset := false
	raw := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			logger.Warn("collection file is not a JSON object, resetting",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			raw = map[string]json.RawMessage{}
			reset = true
		}
	} else {
		reset = true
	}

	clean := Sanitize(raw, logger)
	if !reset && len(clean) == len(raw) {
		// Nothing dropped and the file decodes; only rewrite when the repair
		// actually changed something.
		same := true
		for key := range raw {
			var before domain.Record
			if err := json.Unmarshal(raw[key], &before); err != nil || before != clean[key] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}

	out, err := json.MarshalIndent(clean, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding repaired %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0640); err != nil {
		return fmt.Errorf("writing repaired %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	logger.Info("repaired collection file",
		slog.String("path", path),
		slog.Int("kept", len(clean)),
		slog.Int("dropped", len(raw)-len(clean)),
	)
	return nil
}
