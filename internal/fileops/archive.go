package fileops

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wilbur182/flowfiler/internal/flow"
)

// DefaultZipName proposes an archive name for a selection: the folder
// name for a single folder, the file stem for a single file, and the
// parent folder name for several items.
func DefaultZipName(paths []string) string {
	if len(paths) == 0 {
		return "Archive.zip"
	}
	first := filepath.Clean(paths[0])
	if len(paths) > 1 {
		parent := filepath.Base(filepath.Dir(first))
		if parent == "." || parent == string(filepath.Separator) {
			parent = "Archive"
		}
		return parent + ".zip"
	}
	base := filepath.Base(first)
	if info, err := os.Stat(first); err == nil && info.IsDir() {
		return base + ".zip"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".zip"
}

// Zip writes the selection into name, created next to the first path.
// Entry names are relative to the deepest folder holding every path.
func Zip(paths []string, name string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("zip: nothing selected")
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		name += ".zip"
	}
	parent := filepath.Dir(filepath.Clean(paths[0]))
	base := commonDir(paths)
	target := UniqueName(parent, name)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("zip: %w", err)
	}
	zw := zip.NewWriter(f)
	werr := func() error {
		for _, p := range paths {
			err := filepath.WalkDir(p, func(fp string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || fp == target {
					return nil
				}
				rel, err := filepath.Rel(base, fp)
				if err != nil {
					return err
				}
				return addFile(zw, fp, filepath.ToSlash(rel))
			})
			if err != nil {
				return err
			}
		}
		return nil
	}()
	if cerr := zw.Close(); werr == nil {
		werr = cerr
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("zip: %w", werr)
	}
	return target, nil
}

// commonDir returns the deepest folder that contains every path.
func commonDir(paths []string) string {
	dir := filepath.Dir(filepath.Clean(paths[0]))
	for _, p := range paths[1:] {
		parent := filepath.Dir(filepath.Clean(p))
		for !isWithin(parent, dir) {
			up := filepath.Dir(dir)
			if up == dir {
				break
			}
			dir = up
		}
	}
	return dir
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// Unzip extracts each .zip among paths into a sibling folder named after
// the archive, using name_1, name_2 ... when that folder exists.
func Unzip(paths []string, logger *slog.Logger) Result {
	var res Result
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), ".zip") {
			continue
		}
		out := strings.TrimSuffix(p, filepath.Ext(p))
		for n := 1; exists(out); n++ {
			out = fmt.Sprintf("%s_%d", strings.TrimSuffix(p, filepath.Ext(p)), n)
		}
		if err := extract(p, out); err != nil {
			if logger != nil {
				logger.Warn("unzip failed", "archive", p, "error", err)
			}
			res.fail(fmt.Errorf("unzip %s: %w", filepath.Base(p), err))
			continue
		}
		res.Created = append(res.Created, out)
	}
	return res
}

func extract(archive, out string) error {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, zf := range zr.File {
		dst := filepath.Join(out, filepath.FromSlash(zf.Name))
		if !isWithin(dst, out) {
			return fmt.Errorf("illegal entry %q", zf.Name)
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := extractFile(zf, dst); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, dst string) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := zf.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	w, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, rc); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// Converter turns office documents into PDFs with a headless office suite.
type Converter struct {
	// LookPath and Run default to exec.LookPath and running the command.
	LookPath func(file string) (string, error)
	Run      func(ctx context.Context, name string, args ...string) error
	Logger   *slog.Logger
}

// Binaries tried in order.
var officeBinaries = []string{"soffice", "libreoffice"}

// ConvertToPDF converts each path next to itself. It fails with
// flow.ErrExternalToolFailure when no office binary is installed.
func (c Converter) ConvertToPDF(ctx context.Context, paths []string) Result {
	var res Result
	if len(paths) == 0 {
		return res
	}
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	run := c.Run
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) error {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
			}
			return nil
		}
	}

	var bin string
	for _, b := range officeBinaries {
		if p, err := lookPath(b); err == nil {
			bin = p
			break
		}
	}
	if bin == "" {
		res.fail(fmt.Errorf("convert to pdf: office suite not found: %w", flow.ErrExternalToolFailure))
		if c.Logger != nil {
			c.Logger.Error("convert to pdf", "error", res.Err)
		}
		return res
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			res.fail(err)
			continue
		}
		dir := filepath.Dir(abs)
		if err := run(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", dir, abs); err != nil {
			err = fmt.Errorf("convert %s: %v: %w", filepath.Base(abs), err, flow.ErrExternalToolFailure)
			if c.Logger != nil {
				c.Logger.Error("convert to pdf failed", "path", abs, "error", err)
			}
			res.fail(err)
			continue
		}
		res.Created = append(res.Created, strings.TrimSuffix(abs, filepath.Ext(abs))+".pdf")
	}
	return res
}
