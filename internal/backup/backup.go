// Package backup manages timestamped copies of the run configuration.
//
// Backups are immutable files named
// cust-run-config.<timestamp>.<description>.json in a single backup
// directory; a same-second collision appends a sequence number to the
// timestamp. They are only ever deleted by an explicit retention cleanup.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/kstrand/autovault/internal/atomicfile"
)

// timestampLayout orders backup names lexicographically by creation time.
const timestampLayout = "20060102-150405"

const (
	namePrefix = "cust-run-config."
	nameSuffix = ".json"
)

// ErrNoBackups indicates the backup directory holds no backups.
var ErrNoBackups = errors.New("no backups found")

// Entry describes one backup file.
type Entry struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`

	// seq disambiguates backups taken within the same second.
	seq int
}

// Manager creates, lists, restores, and prunes backups of one config file.
type Manager struct {
	configPath string
	dir        string
	now        func() time.Time
}

// NewManager builds a Manager for the config file at configPath, storing
// backups in dir.
func NewManager(configPath, dir string) *Manager {
	return &Manager{
		configPath: configPath,
		dir:        dir,
		now:        time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Dir returns the backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies the current config file into the backup directory and
// returns the backup path. It fails when the source config does not exist.
func (m *Manager) Create(description string) (string, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("config file %s does not exist", m.configPath)
		}
		return "", fmt.Errorf("read config: %w", err)
	}

	desc := slug.Make(description)
	if desc == "" {
		desc = "manual"
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	// Later backups within the same second get an increasing sequence
	// suffix on the timestamp field, so creation order survives in the
	// name and an existing backup is never overwritten.
	now := m.now()
	stamp := now.Format(timestampLayout)
	if seq, err := m.nextSeq(now); err != nil {
		return "", err
	} else if seq > 0 {
		stamp = fmt.Sprintf("%s-%d", stamp, seq)
	}
	path := filepath.Join(m.dir, namePrefix+stamp+"."+desc+nameSuffix)

	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	return path, nil
}

// nextSeq returns 0 when no backup exists for ts's second, otherwise one
// past the highest sequence already used in that second.
func (m *Manager) nextSeq(ts time.Time) (int, error) {
	entries, err := m.List()
	if err != nil {
		return 0, err
	}
	second := ts.Truncate(time.Second)
	next := -1
	for _, e := range entries {
		if e.Timestamp.Equal(second) && e.seq > next {
			next = e.seq
		}
	}
	return next + 1, nil
}

// List returns all backups, most recent first.
func (m *Manager) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		entry, ok := parseName(de.Name())
		if !ok {
			continue
		}
		entry.Path = filepath.Join(m.dir, de.Name())
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		}
		if entries[i].seq != entries[j].seq {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].Name > entries[j].Name
	})
	return entries, nil
}

// parseName decodes "cust-run-config.<timestamp>[-<seq>].<description>.json".
func parseName(name string) (Entry, bool) {
	if !strings.HasPrefix(name, namePrefix) || !strings.HasSuffix(name, nameSuffix) {
		return Entry{}, false
	}
	core := strings.TrimSuffix(strings.TrimPrefix(name, namePrefix), nameSuffix)
	parts := strings.SplitN(core, ".", 2)
	if len(parts) != 2 {
		return Entry{}, false
	}

	stamp, seq := parts[0], 0
	if len(stamp) > len(timestampLayout) && stamp[len(timestampLayout)] == '-' {
		n, err := strconv.Atoi(stamp[len(timestampLayout)+1:])
		if err != nil || n < 1 {
			return Entry{}, false
		}
		stamp, seq = stamp[:len(timestampLayout)], n
	}

	ts, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Name: name, Timestamp: ts, Description: parts[1], seq: seq}, true
}

// Restore replaces the current config with the backup at path.
//
// The backup must parse as JSON, and the current config (when present) is
// backed up first, so a restore is itself reversible.
func (m *Manager) Restore(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", path, err)
	}
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("backup %s is not valid JSON: %w", path, err)
	}

	if _, err := os.Stat(m.configPath); err == nil {
		if _, err := m.Create("pre-restore"); err != nil {
			return fmt.Errorf("pre-restore backup failed: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("restore config: %w", err)
	}
	return nil
}

// Select resolves a restore selector: a 1-based index into the
// most-recent-first backup list.
func (m *Manager) Select(index int) (Entry, error) {
	entries, err := m.List()
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, ErrNoBackups
	}
	if index < 1 || index > len(entries) {
		return Entry{}, fmt.Errorf("backup index %d out of range (1-%d)", index, len(entries))
	}
	return entries[index-1], nil
}

// Cleanup deletes all but the keep most recent backups and returns the
// removed entries. Under dryRun nothing is deleted; the candidates are
// returned unchanged.
func (m *Manager) Cleanup(keep int, dryRun bool) ([]Entry, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep count must be non-negative, got %d", keep)
	}

	entries, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(entries) <= keep {
		return nil, nil
	}

	victims := entries[keep:]
	if dryRun {
		return victims, nil
	}
	for _, v := range victims {
		if err := os.Remove(v.Path); err != nil {
			return nil, fmt.Errorf("remove backup %s: %w", v.Name, err)
		}
	}
	return victims, nil
}
