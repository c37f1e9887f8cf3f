// Package modcache implements the on-disk module cache and resolver.
//
// Compiled module interfaces live as .lmod files in a cache directory
// with a sqlite index beside them, so importing a previously compiled
// module yields interface ASR without reparsing its source. Cross-unit
// communication goes only through these files.
package modcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/errors"
	"github.com/lcompilers/lasr/internal/modfile"
)

const indexFile = "index.db"

const schema = `
CREATE TABLE IF NOT EXISTS modules (
	name     TEXT PRIMARY KEY,
	file     TEXT NOT NULL,
	version  INTEGER NOT NULL,
	digest   TEXT NOT NULL,
	producer INTEGER NOT NULL
);`

// Cache is a module cache rooted at a directory.
type Cache struct {
	dir string
	db  *sql.DB
}

// Entry is one row of the cache index.
type Entry struct {
	Name     string
	File     string
	Version  uint16
	Digest   string
	Producer uint16
}

// Open creates or opens a cache directory and its index.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, indexFile))
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{dir: dir, db: db}, nil
}

// Close releases the index handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

// Put persists a unit holding one interface module and records it in
// the index under the module's name.
func (c *Cache) Put(u *asr.TranslationUnit, producer uint16) error {
	m, err := modfile.UnitModule(u)
	if err != nil {
		return err
	}
	file := m.Name() + modfile.Ext
	path := filepath.Join(c.dir, file)
	if err := modfile.WriteFile(path, u, producer); err != nil {
		return err
	}
	_, _, hdr, err := modfile.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(
		`INSERT INTO modules(name, file, version, digest, producer) VALUES(?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET file=excluded.file, version=excluded.version,
		 digest=excluded.digest, producer=excluded.producer`,
		m.Name(), file, hdr.Version, hdr.Digest, producer)
	return err
}

// Load resolves a module name through the index and decodes its file.
func (c *Cache) Load(name string) (*asr.TranslationUnit, *asr.Module, modfile.Header, error) {
	var file string
	err := c.db.QueryRow(`SELECT file FROM modules WHERE name = ?`, name).Scan(&file)
	if err == sql.ErrNoRows {
		return nil, nil, modfile.Header{}, errors.New(errors.SYM003, "module %q not in cache", name)
	}
	if err != nil {
		return nil, nil, modfile.Header{}, err
	}
	path := filepath.Join(c.dir, file)
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, nil, modfile.Header{}, errors.New(errors.MOD004, "index entry for %q points at missing file %s", name, file)
	}
	return modfile.ReadFile(path)
}

// Stat returns the index entry for a module name.
func (c *Cache) Stat(name string) (Entry, bool, error) {
	var e Entry
	err := c.db.QueryRow(
		`SELECT name, file, version, digest, producer FROM modules WHERE name = ?`, name).
		Scan(&e.Name, &e.File, &e.Version, &e.Digest, &e.Producer)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

// List returns all index entries in name order.
func (c *Cache) List() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT name, file, version, digest, producer FROM modules ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.File, &e.Version, &e.Digest, &e.Producer); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EnvPath is the environment variable naming extra module search
// directories, list-separated.
const EnvPath = "LASR_MODULE_PATH"

// SearchPaths returns the module search directories: the explicit list,
// then EnvPath entries, then the working directory.
func SearchPaths(explicit ...string) []string {
	paths := append([]string(nil), explicit...)
	if env := os.Getenv(EnvPath); env != "" {
		for _, p := range strings.Split(env, string(os.PathListSeparator)) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	paths = append(paths, ".")
	return paths
}

// Locate finds a module file by name across search paths.
func Locate(name string, paths []string) (string, error) {
	for _, dir := range paths {
		path := filepath.Join(dir, name+modfile.Ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("module %q not found on %s", name, strings.Join(paths, string(os.PathListSeparator)))
}
