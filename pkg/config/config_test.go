package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.fsl.sh/pkg/eval/vals"
	"src.fsl.sh/pkg/must"
	"src.fsl.sh/pkg/parse"
	"src.fsl.sh/pkg/testutil"
	"src.fsl.sh/pkg/tt"
)

func TestParse(t *testing.T) {
	data := testutil.Dedent(`
		root: work
		env:
		  USER: alice
		paths:
		  OUT: work/out
		  ABS: /abs
		permissions:
		  allow_write: [work/out]
		  disallow_read: [work/secret]
		journal: journal.db
		max_call_depth: 50
		`)
	cfg, err := Parse([]byte(data), "/base")
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Root:  "/base/work",
		Env:   map[string]string{"USER": "alice"},
		Paths: map[string]string{"OUT": "/base/work/out", "ABS": "/abs"},
		Permissions: Permissions{
			AllowWrite:   []string{"/base/work/out"},
			DisallowRead: []string{"/base/work/secret"},
		},
		Journal:      "/base/journal.db",
		MaxCallDepth: 50,
		BaseDir:      "/base",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse (-want +got):\n%s", diff)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg := must.OK1(Parse([]byte("{}"), "/base"))
	if cfg.Root != "/base" || cfg.Journal != "" {
		t.Errorf("got Root %q, Journal %q; want /base and empty", cfg.Root, cfg.Journal)
	}
}

func TestParse_Errors(t *testing.T) {
	errorContaining := func(s string) tt.Matcher {
		return errorMatcher(s)
	}
	tt.Test(t, tt.Fn("Parse", func(s string) error {
		_, err := Parse([]byte(s), "/base")
		return err
	}),
		tt.Args("root: [").Rets(errorContaining("failed to parse config")),
		tt.Args("env: {1x: a}").Rets(errorContaining(`bad environment name "1x"`)),
		tt.Args("paths: {a-b: x}").Rets(errorContaining(`bad environment name "a-b"`)),
		tt.Args("env: {X: a}\npaths: {X: b}").Rets(errorContaining("X is bound in both")),
		tt.Args("max_call_depth: -1").Rets(errorContaining("must not be negative")),
		tt.Args("unknown: 1").Rets(nil),
	)
}

type errorMatcher string

func (m errorMatcher) Match(ret tt.RetValue) bool {
	err, ok := ret.(error)
	return ok && strings.Contains(err.Error(), string(m))
}

func TestLoad(t *testing.T) {
	dir := testutil.InTempDir(t)
	testutil.ApplyDir(testutil.Dir{
		"conf": testutil.Dir{
			"fsl.yaml": "root: ..\njournal: j.db\n",
		},
	})

	cfg, err := Load("conf/fsl.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Root != dir {
		t.Errorf("Root = %q, want %q", cfg.Root, dir)
	}
	if want := filepath.Join(dir, "conf", "j.db"); cfg.Journal != want {
		t.Errorf("Journal = %q, want %q", cfg.Journal, want)
	}

	_, err = Load("nope.yaml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(nope.yaml) -> %v, want not-exist error", err)
	}
}

func TestNewEvaler(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.ApplyDirIn(testutil.Dir{"in.txt": "hi"}, dir)
	cfg := must.OK1(Parse([]byte(testutil.Dedent(`
		env:
		  NAME: bob
		paths:
		  IN: in.txt
		permissions:
		  allow_write: [out]
		`)), dir))

	ev, err := cfg.NewEvaler()
	if err != nil {
		t.Fatal(err)
	}
	if ev.Sandbox().Root != dir {
		t.Errorf("sandbox root = %q, want %q", ev.Sandbox().Root, dir)
	}
	if ev.Sandbox().CanWrite(filepath.Join(dir, "x")) {
		t.Errorf("sandbox allows writing outside allow_write")
	}
	if diff := cmp.Diff([]string{"IN", "NAME"}, sortStrings(ev.EnvNames())); diff != "" {
		t.Errorf("EnvNames (-want +got):\n%s", diff)
	}

	v, err := ev.Eval(parse.Source{Name: "[test]", Code: "$c = READ @IN\nreturn $c + @NAME"})
	if v != "hibob" || err != nil {
		t.Errorf("Eval -> (%v, %v), want (hibob, nil)", v, err)
	}
	v, _ = ev.Eval(parse.Source{Name: "[test]", Code: "return @IN"})
	if v != vals.Path(filepath.Join(dir, "in.txt")) {
		t.Errorf("@IN = %#v, want path to in.txt", v)
	}
}

func sortStrings(s []string) []string {
	sort.Strings(s)
	return s
}
