// Package packager bundles per-architecture build outputs into a single release package.
//
// A package is a zip archive whose members are the architecture's artifacts, stored
// under their bare filenames in declared order, followed by a boardtype.txt entry
// holding the board identity. Packages are written all-or-nothing.
package packager

import (
	"archive/zip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// BoardTypeEntry is the metadata member carrying the board identity.
const BoardTypeEntry = "boardtype.txt"

// Request describes one packaging job.
type Request struct {
	BuildDir  string
	Env       string
	Artifacts core.ArtifactSet
	Board     core.BoardIdentity
}

// Result describes a package that was written.
type Result struct {
	Path    string
	Members []string
	SHA256  string
	Size    int64
}

// Packager writes release packages.
type Packager struct {
	naming NamingPolicy
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Packager.
type Option func(*Packager)

// WithLogger sets the logger for packaging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Packager) {
		p.logger = logger
	}
}

// WithClock sets the clock used to stamp the metadata entry.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		p.now = now
	}
}

// New creates a Packager using the given naming policy.
func New(naming NamingPolicy, opts ...Option) *Packager {
	p := &Packager{
		naming: naming,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package writes the package for req and returns its location and digest.
func (p *Packager) Package(ctx context.Context, req Request) (*Result, error) {
	if !req.Board.Valid() {
		return nil, fmt.Errorf("package %s: %w", req.Env, core.ErrMissingBoardIdentity)
	}
	if req.Artifacts.Len() == 0 {
		return nil, fmt.Errorf("package %s: artifact set is empty", req.Env)
	}

	names, err := MemberNames(req.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", req.Env, err)
	}

	files := req.Artifacts.Files()
	var missing []string
	for _, f := range files {
		info, err := os.Stat(filepath.Join(req.BuildDir, f))
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingArtifactsError{BuildDir: req.BuildDir, Missing: missing}
	}

	dest, err := p.naming.PackagePath(req.BuildDir, req.Env)
	if err != nil {
		return nil, err
	}

	members := append(names, BoardTypeEntry)

	sum, size, err := p.writeAtomic(ctx, dest, req.BuildDir, files, req.Board)
	if err != nil {
		return nil, fmt.Errorf("write package %s: %w", dest, err)
	}

	p.logger.Info("firmware package created",
		"path", dest,
		"board", req.Board.String(),
		"members", len(members),
		"sha256", sum,
	)

	return &Result{Path: dest, Members: members, SHA256: sum, Size: size}, nil
}

// MemberNames returns the archive member name of each artifact, in order.
// Artifacts are stored under their bare filenames, so entries must have
// distinct base names and none may be boardtype.txt.
func MemberNames(artifacts core.ArtifactSet) ([]string, error) {
	files := artifacts.Files()
	names := make([]string, 0, len(files)+1)
	owner := make(map[string]string, len(files))
	for _, f := range files {
		name := filepath.Base(f)
		if name == BoardTypeEntry {
			return nil, &MemberNameError{Name: name, Entries: []string{f}}
		}
		if prev, ok := owner[name]; ok {
			return nil, &MemberNameError{Name: name, Entries: []string{prev, f}}
		}
		owner[name] = f
		names = append(names, name)
	}
	return names, nil
}

// writeAtomic builds the archive in a temp file next to dest and renames it into place.
func (p *Packager) writeAtomic(ctx context.Context, dest, buildDir string, files []string, board core.BoardIdentity) (string, int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp.*")
	if err != nil {
		return "", 0, err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	h := sha256.New()
	zw := zip.NewWriter(io.MultiWriter(tmp, h))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			_ = tmp.Close()
			return "", 0, err
		}
		if err := addFile(zw, filepath.Join(buildDir, f), filepath.Base(f)); err != nil {
			_ = tmp.Close()
			return "", 0, fmt.Errorf("add %s: %w", f, err)
		}
		p.logger.Debug("added artifact", "file", f)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     BoardTypeEntry,
		Method:   zip.Deflate,
		Modified: p.now(),
	})
	if err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if _, err := io.WriteString(w, board.String()); err != nil {
		_ = tmp.Close()
		return "", 0, err
	}

	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		_ = tmp.Close()
		return "", 0, err
	}
	if err := tmp.Close(); err != nil {
		return "", 0, err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), info.Size(), nil
}

func addFile(zw *zip.Writer, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
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
	_, err = io.Copy(w, f)
	return err
}
