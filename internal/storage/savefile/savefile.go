// Package savefile persists characters as line-oriented "KEY: value" text
// files, one file per character.
package savefile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/quest-chronicles/internal/game/character"
	"github.com/louisbranch/quest-chronicles/internal/game/combat"
	apperrors "github.com/louisbranch/quest-chronicles/internal/platform/errors"
)

// Suffix is appended to the character name to form the file name.
const Suffix = "_save.txt"

var (
	// ErrCharacterNotFound is returned when no save file exists for a name.
	ErrCharacterNotFound = apperrors.New(apperrors.CodeCharacterNotFound, "character not found")
	// ErrSaveFileCorrupted is returned when a save file exists but cannot be read.
	ErrSaveFileCorrupted = apperrors.New(apperrors.CodeSaveFileCorrupted, "save file corrupted")
	// ErrInvalidSaveData is returned when a save file is readable but malformed.
	ErrInvalidSaveData = apperrors.New(apperrors.CodeInvalidSaveData, "invalid save data")
)

const (
	keyName            = "NAME"
	keyClass           = "CLASS"
	keyLevel           = "LEVEL"
	keyHealth          = "HEALTH"
	keyMaxHealth       = "MAX_HEALTH"
	keyStrength        = "STRENGTH"
	keyMagic           = "MAGIC"
	keyExperience      = "EXPERIENCE"
	keyGold            = "GOLD"
	keyInventory       = "INVENTORY"
	keyActiveQuests    = "ACTIVE_QUESTS"
	keyCompletedQuests = "COMPLETED_QUESTS"
	keyEquippedWeapon  = "EQUIPPED_WEAPON"
	keyEquippedArmor   = "EQUIPPED_ARMOR"
)

// Store reads and writes save files in a single directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the save directory.
func (s *Store) Dir() string { return s.dir }

// Save writes the character, replacing any previous save.
func (s *Store) Save(ctx context.Context, c *character.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("character is required")
	}
	path, err := s.path(c.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+c.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(Encode(c)); err != nil {
		tmp.Close()
		return fmt.Errorf("write save %s: %w", c.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close save %s: %w", c.Name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace save %s: %w", c.Name, err)
	}
	return nil
}

// Load reads the named character.
func (s *Store) Load(ctx context.Context, name string) (*character.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(name)
		}
		return nil, apperrors.WrapWithMetadata(
			apperrors.CodeSaveFileCorrupted,
			fmt.Sprintf("read save file for %q", name),
			map[string]string{"name": name},
			err,
		)
	}
	c, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	if c.Name != name {
		return nil, invalidData(fmt.Sprintf("file for %q holds character %q", name, c.Name))
	}
	return c, nil
}

// List returns the saved character names in sorted order. A missing
// directory has no characters.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list save dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, ok := strings.CutSuffix(entry.Name(), Suffix)
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named character's save file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFound(name)
		}
		return fmt.Errorf("delete save %q: %w", name, err)
	}
	return nil
}

func (s *Store) path(name string) (string, error) {
	if err := character.ValidateName(name); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", apperrors.WithMetadata(
			apperrors.CodeInvalidSaveData,
			fmt.Sprintf("character name %q cannot be used as a file name", name),
			map[string]string{"name": name},
		)
	}
	return filepath.Join(s.dir, name+Suffix), nil
}

func notFound(name string) error {
	return apperrors.WithMetadata(
		apperrors.CodeCharacterNotFound,
		fmt.Sprintf("character %q not found", name),
		map[string]string{"name": name},
	)
}

// Encode renders a character in save file format.
func Encode(c *character.Character) []byte {
	var buf bytes.Buffer
	line := func(key, value string) {
		fmt.Fprintf(&buf, "%s: %s\n", key, value)
	}
	line(keyName, c.Name)
	line(keyClass, c.Class.String())
	line(keyLevel, strconv.Itoa(c.Level))
	line(keyHealth, strconv.Itoa(c.Health))
	line(keyMaxHealth, strconv.Itoa(c.MaxHealth))
	line(keyStrength, strconv.Itoa(c.Strength))
	line(keyMagic, strconv.Itoa(c.Magic))
	line(keyExperience, strconv.Itoa(c.Experience))
	line(keyGold, strconv.Itoa(c.Gold))
	line(keyInventory, strings.Join(c.Inventory, ","))
	line(keyActiveQuests, strings.Join(c.ActiveQuests, ","))
	line(keyCompletedQuests, strings.Join(c.CompletedQuests, ","))
	line(keyEquippedWeapon, c.EquippedWeapon)
	line(keyEquippedArmor, c.EquippedArmor)
	return buf.Bytes()
}

// Decode parses save file contents.
func Decode(data []byte) (*character.Character, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrSaveFileCorrupted
	}

	fields := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, invalidData(fmt.Sprintf("line %d: missing ':'", lineNo))
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, invalidData(fmt.Sprintf("line %d: missing key", lineNo))
		}
		fields[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeSaveFileCorrupted, "scan save file", err)
	}

	d := decoder{fields: fields}
	c := &character.Character{
		Combatant: combat.Combatant{
			Name:      d.text(keyName),
			Health:    d.number(keyHealth),
			MaxHealth: d.number(keyMaxHealth),
			Strength:  d.number(keyStrength),
			Magic:     d.number(keyMagic),
		},
		Level:           d.number(keyLevel),
		Experience:      d.number(keyExperience),
		Gold:            d.number(keyGold),
		Inventory:       d.list(keyInventory),
		ActiveQuests:    d.list(keyActiveQuests),
		CompletedQuests: d.list(keyCompletedQuests),
		EquippedWeapon:  fields[keyEquippedWeapon],
		EquippedArmor:   fields[keyEquippedArmor],
	}
	if d.err == nil {
		class, err := combat.ParseClass(d.text(keyClass))
		if err != nil {
			d.err = invalidData(fmt.Sprintf("%s: %v", keyClass, err))
		}
		c.Class = class
	}
	if d.err != nil {
		return nil, d.err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// decoder keeps the first field error.
type decoder struct {
	fields map[string]string
	err    error
}

func (d *decoder) text(key string) string {
	value, ok := d.fields[key]
	if !ok && d.err == nil {
		d.err = invalidData(fmt.Sprintf("missing %s", key))
	}
	return value
}

func (d *decoder) number(key string) int {
	raw := d.text(key)
	if d.err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		d.err = invalidData(fmt.Sprintf("%s: %q is not a number", key, raw))
		return 0
	}
	return n
}

func (d *decoder) list(key string) []string {
	out := []string{}
	for _, item := range strings.Split(d.fields[key], ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func invalidData(detail string) error {
	return apperrors.WithMetadata(
		apperrors.CodeInvalidSaveData,
		"invalid save data: "+detail,
		map[string]string{"detail": detail},
	)
}
