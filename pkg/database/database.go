// Package database loads a project's data files: common events, actors,
// classes, enemies, troops, tilesets, the system settings and the maps.
//
// Files are JSON arrays indexed by id with a null first entry, as the editor
// writes them. They are looked up case-insensitively under the project's
// data directory, and may be Shift-JIS encoded when the loader is told so.
package database

import (
	"bytes"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/evrun/pkg/fileutil"
	"github.com/zurustar/evrun/pkg/game"
	"github.com/zurustar/evrun/pkg/logger"
)

// DataDir is the directory holding the data files.
const DataDir = "data"

// Supported file encodings.
const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

// ValidEncoding reports whether name is a supported encoding.
func ValidEncoding(name string) bool {
	switch strings.ToLower(name) {
	case "", EncodingUTF8, "utf8", EncodingShiftJIS, "sjis":
		return true
	}
	return false
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SystemData is the part of System.json the runtime needs.
type SystemData struct {
	GameTitle    string `json:"gameTitle"`
	StartMapID   int    `json:"startMapId"`
	StartX       int    `json:"startX"`
	StartY       int    `json:"startY"`
	PartyMembers []int  `json:"partyMembers"`
}

// Database is the loaded project data. It implements game.Database.
type Database struct {
	System SystemData

	commonEvents map[int]*game.CommonEvent
	actors       map[int]*game.ActorData
	classes      map[int]*game.ClassData
	enemies      map[int]*game.EnemyData
	troops       map[int]*game.TroopData
	tilesets     map[int]*game.TilesetData
	maps         map[int]*game.MapData

	// files lists every data file read, relative to the project root.
	files []string
}

// Option configures Load.
type Option func(*loader)

// WithEncoding sets the encoding of the data files.
func WithEncoding(name string) Option {
	return func(l *loader) {
		l.encoding = strings.ToLower(name)
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *loader) {
		l.log = log
	}
}

type loader struct {
	fsys     fileutil.FileSystem
	dir      string
	encoding string
	log      *slog.Logger
	db       *Database
}

// Load reads every data file from fsys. Missing files yield empty tables;
// malformed files are an error.
func Load(fsys fileutil.FileSystem, opts ...Option) (*Database, error) {
	l := &loader{
		fsys:     fsys,
		encoding: EncodingUTF8,
		log:      logger.GetLogger(),
		db: &Database{
			commonEvents: make(map[int]*game.CommonEvent),
			actors:       make(map[int]*game.ActorData),
			classes:      make(map[int]*game.ClassData),
			enemies:      make(map[int]*game.EnemyData),
			troops:       make(map[int]*game.TroopData),
			tilesets:     make(map[int]*game.TilesetData),
			maps:         make(map[int]*game.MapData),
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	if !ValidEncoding(l.encoding) {
		return nil, fmt.Errorf("unsupported encoding: %s", l.encoding)
	}

	l.dir = DataDir
	if _, err := fsys.Resolve(DataDir); err != nil {
		l.dir = "."
	}

	tables := []struct {
		file string
		load func([]byte) error
	}{
		{"CommonEvents.json", func(b []byte) error { return decodeTable(b, l.db.commonEvents, func(e *game.CommonEvent) int { return e.ID }) }},
		{"Actors.json", func(b []byte) error { return decodeTable(b, l.db.actors, func(a *game.ActorData) int { return a.ID }) }},
		{"Classes.json", func(b []byte) error { return decodeTable(b, l.db.classes, func(c *game.ClassData) int { return c.ID }) }},
		{"Enemies.json", func(b []byte) error { return decodeTable(b, l.db.enemies, func(e *game.EnemyData) int { return e.ID }) }},
		{"Troops.json", func(b []byte) error { return decodeTable(b, l.db.troops, func(t *game.TroopData) int { return t.ID }) }},
		{"Tilesets.json", func(b []byte) error { return decodeTable(b, l.db.tilesets, func(t *game.TilesetData) int { return t.ID }) }},
		{"System.json", func(b []byte) error { return json.Unmarshal(b, &l.db.System) }},
	}
	for _, t := range tables {
		if err := l.loadFile(t.file, t.load); err != nil {
			return nil, err
		}
	}
	if err := l.loadMaps(); err != nil {
		return nil, err
	}

	l.log.Info("database loaded",
		"commonEvents", len(l.db.commonEvents),
		"actors", len(l.db.actors),
		"troops", len(l.db.troops),
		"maps", len(l.db.maps),
	)
	return l.db, nil
}

// loadFile reads one data file and hands its decoded bytes to load.
// A missing file is skipped.
func (l *loader) loadFile(name string, load func([]byte) error) error {
	rel := l.dir + "/" + name
	actual, err := l.fsys.Resolve(rel)
	if err != nil {
		l.log.Debug("data file not found", "file", rel)
		return nil
	}
	raw, err := l.fsys.ReadFile(actual)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", actual, err)
	}
	data, err := l.decode(raw)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", actual, err)
	}
	if err := load(data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", actual, err)
	}
	l.db.files = append(l.db.files, actual)
	return nil
}

// decode converts raw file bytes to UTF-8 JSON.
func (l *loader) decode(raw []byte) ([]byte, error) {
	if l.encoding == EncodingShiftJIS || l.encoding == "sjis" {
		out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
		if err != nil {
			return nil, err
		}
		raw = out
	}
	return bytes.TrimPrefix(raw, utf8BOM), nil
}

// loadMaps reads every MapNNN.json in the data directory.
func (l *loader) loadMaps() error {
	names, err := l.fsys.List(l.dir)
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", l.dir, err)
	}
	for _, name := range names {
		id, ok := mapID(name)
		if !ok {
			continue
		}
		err := l.loadFile(name, func(b []byte) error {
			var m game.MapData
			if err := json.Unmarshal(b, &m); err != nil {
				return err
			}
			m.ID = id
			l.db.maps[id] = &m
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// mapID extracts n from a file named MapNNN.json.
func mapID(name string) (int, bool) {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "map") || !strings.HasSuffix(lower, ".json") {
		return 0, false
	}
	digits := lower[len("map") : len(lower)-len(".json")]
	if digits == "" {
		return 0, false
	}
	id := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		id = id*10 + int(c-'0')
	}
	return id, id > 0
}

// decodeTable decodes an id-indexed array, skipping null entries.
func decodeTable[T any](data []byte, into map[int]*T, id func(*T) int) error {
	var rows []*T
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	for _, row := range rows {
		if row == nil {
			continue
		}
		into[id(row)] = row
	}
	return nil
}

func (d *Database) CommonEvent(id int) *game.CommonEvent { return d.commonEvents[id] }
func (d *Database) HasActor(id int) bool                 { return d.actors[id] != nil }
func (d *Database) HasClass(id int) bool                 { return d.classes[id] != nil }
func (d *Database) HasTroop(id int) bool                 { return d.troops[id] != nil }

// CommonEvents returns every common event in id order.
func (d *Database) CommonEvents() []*game.CommonEvent {
	ids := make([]int, 0, len(d.commonEvents))
	for id := range d.commonEvents {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*game.CommonEvent, len(ids))
	for i, id := range ids {
		out[i] = d.commonEvents[id]
	}
	return out
}

// Map returns map id, or nil.
func (d *Database) Map(id int) *game.MapData { return d.maps[id] }

// Files returns the data files that were read, relative to the project root.
func (d *Database) Files() []string { return append([]string(nil), d.files...) }

// Seed builds the static data a game.World starts from. startMap overrides
// the start map of System.json when positive.
func (d *Database) Seed(startMap int) *game.Seed {
	seed := &game.Seed{
		Actors:     d.actors,
		Classes:    d.classes,
		Enemies:    d.enemies,
		Troops:     d.troops,
		Maps:       d.maps,
		Tilesets:   d.tilesets,
		StartMapID: d.System.StartMapID,
		StartX:     d.System.StartX,
		StartY:     d.System.StartY,
		Party:      d.System.PartyMembers,
	}
	if startMap > 0 && startMap != seed.StartMapID {
		seed.StartMapID = startMap
		seed.StartX, seed.StartY = 0, 0
	}
	return seed
}
