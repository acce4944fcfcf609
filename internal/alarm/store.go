package alarm

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no alarm matches an ID or prefix.
	ErrNotFound = errors.New("alarm not found")
	// ErrAmbiguousID is returned when a prefix matches more than one alarm.
	ErrAmbiguousID = errors.New("alarm id prefix is ambiguous")
)

// Store persists alarms as a JSON array in a single file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by path. The file is created on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// List returns all alarms ordered by time of day, then creation.
func (s *Store) List() ([]Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return nil, err
	}
	sortAlarms(alarms)
	return alarms, nil
}

// Get finds an alarm by full ID or unique prefix.
func (s *Store) Get(ref string) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return Alarm{}, err
	}
	i, err := find(alarms, ref)
	if err != nil {
		return Alarm{}, err
	}
	return alarms[i], nil
}

// Add validates and stores a new alarm. A nil ID is replaced with a fresh one.
func (s *Store) Add(a Alarm) (Alarm, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.ArmedAt.IsZero() {
		a.ArmedAt = a.CreatedAt
	}
	if err := a.Validate(); err != nil {
		return Alarm{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return Alarm{}, err
	}
	if slices.ContainsFunc(alarms, func(x Alarm) bool { return x.ID == a.ID }) {
		return Alarm{}, fmt.Errorf("alarm %s already exists", a.ShortID())
	}
	alarms = append(alarms, a)
	if err := s.save(alarms); err != nil {
		return Alarm{}, err
	}
	return a, nil
}

// Update replaces the alarm with the same ID.
func (s *Store) Update(a Alarm) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(alarms, func(x Alarm) bool { return x.ID == a.ID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, a.ID)
	}
	alarms[i] = a
	return s.save(alarms)
}

// Remove deletes an alarm by ID or unique prefix and returns it.
func (s *Store) Remove(ref string) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return Alarm{}, err
	}
	i, err := find(alarms, ref)
	if err != nil {
		return Alarm{}, err
	}
	removed := alarms[i]
	alarms = slices.Delete(alarms, i, i+1)
	if err := s.save(alarms); err != nil {
		return Alarm{}, err
	}
	return removed, nil
}

// SetEnabled switches an alarm on or off and returns the updated alarm.
// Enabling re-arms a one-shot alarm from the current time.
func (s *Store) SetEnabled(ref string, enabled bool) (Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return Alarm{}, err
	}
	i, err := find(alarms, ref)
	if err != nil {
		return Alarm{}, err
	}
	alarms[i].Enabled = enabled
	if enabled {
		alarms[i].ArmedAt = time.Now()
	}
	if err := s.save(alarms); err != nil {
		return Alarm{}, err
	}
	return alarms[i], nil
}

// DisableFired switches off the one-shot alarms that have rung by now and
// returns them.
func (s *Store) DisableFired(now time.Time) ([]Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alarms, err := s.load()
	if err != nil {
		return nil, err
	}
	var fired []Alarm
	for i, a := range alarms {
		if a.Enabled && a.Fired(now) {
			alarms[i].Enabled = false
			fired = append(fired, alarms[i])
		}
	}
	if len(fired) == 0 {
		return nil, nil
	}
	if err := s.save(alarms); err != nil {
		return nil, err
	}
	return fired, nil
}

// Next returns the enabled alarm that fires soonest after now. One-shots
// that already fired are skipped. ok is false when nothing is left to ring.
func (s *Store) Next(now time.Time) (a Alarm, at time.Time, ok bool, err error) {
	alarms, err := s.List()
	if err != nil {
		return Alarm{}, time.Time{}, false, err
	}
	for _, x := range alarms {
		if !x.Enabled {
			continue
		}
		t, pending := x.NextTrigger(now)
		if !pending {
			continue
		}
		if !ok || t.Before(at) {
			a, at, ok = x, t, true
		}
	}
	return a, at, ok, nil
}

func (s *Store) load() ([]Alarm, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read alarms: %w", err)
	}

	var alarms []Alarm
	if err := json.Unmarshal(data, &alarms); err != nil {
		return nil, fmt.Errorf("invalid alarms file %s: %w", s.path, err)
	}
	return alarms, nil
}

// save writes through a temp file and rename so a crash never leaves a
// half-written store.
func (s *Store) save(alarms []Alarm) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create alarms directory %s: %w", dir, err)
	}

	if alarms == nil {
		alarms = []Alarm{}
	}
	data, err := json.MarshalIndent(alarms, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alarms: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".alarms-*.json")
	if err != nil {
		return fmt.Errorf("failed to write alarms: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write alarms: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write alarms: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write alarms: %w", err)
	}
	return nil
}

// find resolves ref to an index: an exact ID wins, otherwise ref must be a
// prefix of exactly one ID.
func find(alarms []Alarm, ref string) (int, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return -1, fmt.Errorf("%w: empty id", ErrNotFound)
	}

	match := -1
	for i, a := range alarms {
		id := a.ID.String()
		if id == ref {
			return i, nil
		}
		if strings.HasPrefix(id, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %q", ErrAmbiguousID, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return match, nil
}

func sortAlarms(alarms []Alarm) {
	slices.SortStableFunc(alarms, func(a, b Alarm) int {
		if c := cmp.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}
