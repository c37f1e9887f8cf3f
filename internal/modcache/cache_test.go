package modcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lcompilers/lasr/internal/asr"
	"github.com/lcompilers/lasr/internal/iface"
	"github.com/lcompilers/lasr/internal/modfile"
)

// interfaceUnit builds a projected module named name.
func interfaceUnit(t *testing.T, name string) *asr.TranslationUnit {
	t.Helper()
	a := asr.NewArena()
	unit := asr.NewUnit(a)
	b := asr.NewBuilder(a)

	m, err := b.Module(unit.Global, name, asr.ABISource)
	if err != nil {
		t.Fatalf("Module() error = %v", err)
	}
	s, err := b.Subroutine(m.SymTab, "run", asr.ABISource, asr.AccessPublic, asr.DefImplementation)
	if err != nil {
		t.Fatalf("Subroutine() error = %v", err)
	}
	if _, err := b.Variable(s.SymTab, "n", asr.IntentIn, asr.StorageDefault, b.Integer(4), asr.AccessPublic, asr.PresenceRequired); err != nil {
		t.Fatalf("Variable() error = %v", err)
	}
	if err := b.SetArgs(s, "n"); err != nil {
		t.Fatalf("SetArgs() error = %v", err)
	}
	s.Body = []asr.Stmt{&asr.Return{}}

	dst := asr.NewUnit(asr.NewArena())
	if _, err := iface.Project(dst, m, asr.ABILFortranModule); err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	return dst
}

func TestCachePutLoad(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	unit := interfaceUnit(t, "alpha")
	if err := cache.Put(unit, modfile.ProducerLASR); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	loaded, m, hdr, err := cache.Load("alpha")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Name() != "alpha" {
		t.Errorf("loaded module = %q, want alpha", m.Name())
	}
	if hdr.Producer != modfile.ProducerLASR {
		t.Errorf("loaded producer = %d", hdr.Producer)
	}
	if !asr.StructuralEqual(unit, loaded) {
		t.Errorf("cache round trip changed the unit")
	}
}

func TestCacheLoadMissing(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	if _, _, _, err := cache.Load("nowhere"); err == nil {
		t.Errorf("Load() of missing module succeeded")
	}
}

func TestCachePutOverwrites(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	if err := cache.Put(interfaceUnit(t, "alpha"), modfile.ProducerLASR); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := cache.Put(interfaceUnit(t, "alpha"), modfile.ProducerGFortranImport); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}
	entry, ok, err := cache.Stat("alpha")
	if err != nil || !ok {
		t.Fatalf("Stat() = %v, %v", ok, err)
	}
	if entry.Producer != modfile.ProducerGFortranImport {
		t.Errorf("entry producer = %d, want the overwriting producer", entry.Producer)
	}
}

func TestCacheList(t *testing.T) {
	cache, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := cache.Put(interfaceUnit(t, name), modfile.ProducerLASR); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}
	entries, err := cache.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
		if e.Digest == "" {
			t.Errorf("entry %q has no digest", e.Name)
		}
	}
	if diff := cmp.Diff([]string{"alpha", "mid", "zeta"}, names); diff != "" {
		t.Errorf("List() order mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheDetectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	if err := cache.Put(interfaceUnit(t, "alpha"), modfile.ProducerLASR); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "alpha"+modfile.Ext)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, _, _, err := cache.Load("alpha"); err == nil {
		t.Errorf("Load() succeeded with the file gone")
	}
}

func TestLocateSearchPaths(t *testing.T) {
	dir := t.TempDir()
	unit := interfaceUnit(t, "alpha")
	if err := modfile.WriteFile(filepath.Join(dir, "alpha"+modfile.Ext), unit, modfile.ProducerLASR); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	path, err := Locate("alpha", []string{t.TempDir(), dir})
	if err != nil {
		t.Fatalf("Locate() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Locate() = %s, want a path under %s", path, dir)
	}
	if _, err := Locate("beta", []string{dir}); err == nil {
		t.Errorf("Locate() found a module that does not exist")
	}
}

func TestSearchPathsEnv(t *testing.T) {
	t.Setenv(EnvPath, "/a"+string(os.PathListSeparator)+"/b")
	paths := SearchPaths("/explicit")
	if paths[0] != "/explicit" {
		t.Errorf("explicit path not first: %v", paths)
	}
	found := 0
	for _, p := range paths {
		if p == "/a" || p == "/b" {
			found++
		}
	}
	if found != 2 {
		t.Errorf("env paths missing from %v", paths)
	}
}
