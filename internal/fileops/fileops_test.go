package fileops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/wilbur182/flowfiler/internal/flow"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestAggregate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "docs", "a.txt"), "a")
	writeFile(t, filepath.Join(root, "docs", "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(root, "docsx.txt"), "x")
	writeFile(t, filepath.Join(root, "c.txt"), "c")

	got := Aggregate([]string{
		filepath.Join(root, "docs", "sub", "b.txt"),
		filepath.Join(root, "c.txt"),
		filepath.Join(root, "docs"),
		filepath.Join(root, "docs", "a.txt"),
		filepath.Join(root, "docsx.txt"),
		filepath.Join(root, "c.txt"),
	})
	want := []string{
		filepath.Join(root, "docs"),
		filepath.Join(root, "c.txt"),
		filepath.Join(root, "docsx.txt"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Aggregate = %v, want %v", got, want)
	}
}

func TestUniqueName(t *testing.T) {
	dir := t.TempDir()
	if got := UniqueName(dir, "report.txt"); got != filepath.Join(dir, "report.txt") {
		t.Errorf("free name = %s", got)
	}
	writeFile(t, filepath.Join(dir, "report.txt"), "")
	writeFile(t, filepath.Join(dir, "report_1.txt"), "")
	if got := UniqueName(dir, "report.txt"); got != filepath.Join(dir, "report_2.txt") {
		t.Errorf("collision name = %s", got)
	}
}

func TestPasteCopyAndMove(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(src, "tree", "deep", "b.txt"), "beta")
	writeFile(t, filepath.Join(dst, "a.txt"), "existing")

	res := Paste([]string{
		filepath.Join(src, "a.txt"),
		filepath.Join(src, "tree"),
		filepath.Join(src, "missing.txt"),
	}, dst, Copy, nil)
	if !res.OK() {
		t.Fatalf("copy failed: %v", res.Err)
	}
	if len(res.Created) != 2 {
		t.Fatalf("created %v", res.Created)
	}
	if got := readFile(t, filepath.Join(dst, "a_1.txt")); got != "alpha" {
		t.Errorf("a_1.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "a.txt")); got != "existing" {
		t.Errorf("existing file overwritten: %q", got)
	}
	if got := readFile(t, filepath.Join(dst, "tree", "deep", "b.txt")); got != "beta" {
		t.Errorf("tree copy = %q", got)
	}
	if _, err := os.Stat(filepath.Join(src, "a.txt")); err != nil {
		t.Errorf("copy removed source: %v", err)
	}

	res = Paste([]string{filepath.Join(src, "a.txt")}, dst, Move, nil)
	if !res.OK() {
		t.Fatalf("move failed: %v", res.Err)
	}
	if _, err := os.Stat(filepath.Join(src, "a.txt")); !os.IsNotExist(err) {
		t.Errorf("move kept source: %v", err)
	}
	if got := readFile(t, filepath.Join(dst, "a_2.txt")); got != "alpha" {
		t.Errorf("a_2.txt = %q", got)
	}
}

func TestPasteRejectsBadTargets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "dir", "f.txt"), "f")

	res := Paste([]string{filepath.Join(root, "dir")}, filepath.Join(root, "nope"), Copy, nil)
	if !errors.Is(res.Err, flow.ErrInvalidTarget) {
		t.Errorf("missing dest err = %v", res.Err)
	}

	res = Paste([]string{filepath.Join(root, "dir")}, filepath.Join(root, "dir"), Copy, nil)
	if res.OK() || res.Failed != 1 {
		t.Errorf("paste into itself: %+v", res)
	}
}

func TestDeleteRenameMkdir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "b.txt"), "b")

	got, err := Rename(filepath.Join(dir, "a.txt"), "c.txt")
	if err != nil || got != filepath.Join(dir, "c.txt") {
		t.Fatalf("Rename = %s, %v", got, err)
	}
	if _, err := Rename(got, "b.txt"); err == nil {
		t.Error("rename onto existing name should fail")
	}
	if _, err := Rename(got, "x/y"); err == nil {
		t.Error("rename with separator should fail")
	}

	folder, err := Mkdir(dir, "new")
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if _, err := Mkdir(dir, "new"); err == nil {
		t.Error("duplicate Mkdir should fail")
	}
	if _, err := Mkdir(dir, "  "); err == nil {
		t.Error("blank Mkdir should fail")
	}

	res := Delete([]string{folder, filepath.Join(dir, "b.txt")}, nil)
	if !res.OK() {
		t.Fatalf("Delete: %v", res.Err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "c.txt" {
		t.Errorf("remaining entries = %v", entries)
	}
}

func TestCreateShortcut(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "notes.md")
	writeFile(t, target, "n")

	first := CreateShortcut([]string{target}, nil)
	second := CreateShortcut([]string{target}, nil)
	if !first.OK() || !second.OK() {
		t.Fatalf("shortcut errors: %v / %v", first.Err, second.Err)
	}
	if first.Created[0] != filepath.Join(dir, "notes - Shortcut") {
		t.Errorf("first link = %s", first.Created[0])
	}
	if second.Created[0] != filepath.Join(dir, "notes - Shortcut (1)") {
		t.Errorf("second link = %s", second.Created[0])
	}
	if dest, err := os.Readlink(first.Created[0]); err != nil || dest != target {
		t.Errorf("link target = %s, %v", dest, err)
	}
}

func TestZipUnzip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "proj", "main.go"), "package main")
	writeFile(t, filepath.Join(dir, "proj", "sub", "x.txt"), "x")
	writeFile(t, filepath.Join(dir, "readme.md"), "hi")

	if got := DefaultZipName([]string{filepath.Join(dir, "proj")}); got != "proj.zip" {
		t.Errorf("dir name = %s", got)
	}
	if got := DefaultZipName([]string{filepath.Join(dir, "readme.md")}); got != "readme.zip" {
		t.Errorf("file name = %s", got)
	}
	if got := DefaultZipName([]string{filepath.Join(dir, "proj"), filepath.Join(dir, "readme.md")}); got != filepath.Base(dir)+".zip" {
		t.Errorf("multi name = %s", got)
	}

	archive, err := Zip([]string{filepath.Join(dir, "proj"), filepath.Join(dir, "readme.md")}, "bundle")
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	if archive != filepath.Join(dir, "bundle.zip") {
		t.Fatalf("archive = %s", archive)
	}

	for _, want := range []string{"bundle", "bundle_1"} {
		res := Unzip([]string{archive, filepath.Join(dir, "readme.md")}, nil)
		if !res.OK() || len(res.Created) != 1 {
			t.Fatalf("Unzip: %+v", res)
		}
		out := res.Created[0]
		if out != filepath.Join(dir, want) {
			t.Errorf("extracted to %s, want %s", out, want)
		}
		if got := readFile(t, filepath.Join(out, "proj", "sub", "x.txt")); got != "x" {
			t.Errorf("x.txt = %q", got)
		}
		if got := readFile(t, filepath.Join(out, "readme.md")); got != "hi" {
			t.Errorf("readme.md = %q", got)
		}
	}
}

func TestConvertToPDF(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "letter.docx")
	writeFile(t, doc, "doc")

	missing := Converter{LookPath: func(string) (string, error) { return "", errors.New("not found") }}
	res := missing.ConvertToPDF(context.Background(), []string{doc})
	if !errors.Is(res.Err, flow.ErrExternalToolFailure) {
		t.Errorf("missing tool err = %v", res.Err)
	}

	var calls [][]string
	ok := Converter{
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		Run: func(_ context.Context, name string, args ...string) error {
			calls = append(calls, append([]string{name}, args...))
			return nil
		},
	}
	res = ok.ConvertToPDF(context.Background(), []string{doc})
	if !res.OK() {
		t.Fatalf("convert: %v", res.Err)
	}
	want := []string{"/usr/bin/soffice", "--headless", "--convert-to", "pdf", "--outdir", dir, doc}
	if len(calls) != 1 || !reflect.DeepEqual(calls[0], want) {
		t.Errorf("calls = %v", calls)
	}
	if res.Created[0] != filepath.Join(dir, "letter.pdf") {
		t.Errorf("created = %v", res.Created)
	}

	failing := ok
	failing.Run = func(context.Context, string, ...string) error { return errors.New("exit 1") }
	res = failing.ConvertToPDF(context.Background(), []string{doc})
	if !errors.Is(res.Err, flow.ErrExternalToolFailure) || res.Failed != 1 {
		t.Errorf("failing run: %+v", res)
	}
}

func TestZipAcrossFoldersRoundTrips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "x.txt"), "x")
	writeFile(t, filepath.Join(dir, "b", "y.txt"), "y")

	archive, err := Zip([]string{filepath.Join(dir, "a", "x.txt"), filepath.Join(dir, "b", "y.txt")}, "both")
	if err != nil {
		t.Fatalf("Zip: %v", err)
	}
	if archive != filepath.Join(dir, "a", "both.zip") {
		t.Fatalf("archive = %s", archive)
	}

	res := Unzip([]string{archive}, nil)
	if !res.OK() || len(res.Created) != 1 {
		t.Fatalf("Unzip: %+v", res)
	}
	out := res.Created[0]
	if got := readFile(t, filepath.Join(out, "a", "x.txt")); got != "x" {
		t.Errorf("a/x.txt = %q", got)
	}
	if got := readFile(t, filepath.Join(out, "b", "y.txt")); got != "y" {
		t.Errorf("b/y.txt = %q", got)
	}
}
