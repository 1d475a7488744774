package packager

import (
	"archive/zip"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// maxBoardTypeSize bounds how much of boardtype.txt is read.
const maxBoardTypeSize = 256

// Manifest is the content summary of an existing package.
type Manifest struct {
	Path    string             `json:"path" yaml:"path"`
	Members []string           `json:"members" yaml:"members"`
	Board   core.BoardIdentity `json:"board" yaml:"board"`
}

// Inspect reads a package and returns its members in archive order and its board identity.
func Inspect(path string) (*Manifest, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open package %s: %w", path, err)
	}
	defer zr.Close()

	m := &Manifest{Path: path}
	found := false
	for _, f := range zr.File {
		m.Members = append(m.Members, f.Name)
		if f.Name != BoardTypeEntry {
			continue
		}
		board, err := readBoardType(f)
		if err != nil {
			return nil, fmt.Errorf("read %s from %s: %w", BoardTypeEntry, path, err)
		}
		m.Board = board
		found = true
	}
	if !found {
		return nil, fmt.Errorf("package %s: no %s entry: %w", path, BoardTypeEntry, core.ErrMissingBoardIdentity)
	}
	return m, nil
}

func readBoardType(f *zip.File) (core.BoardIdentity, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBoardTypeSize))
	if err != nil {
		return "", err
	}
	return core.BoardIdentity(strings.TrimRight(string(data), "\r\n")), nil
}

// Verify checks that the package at path holds exactly artifacts plus boardtype.txt,
// and that it was built for board.
func Verify(path string, artifacts core.ArtifactSet, board core.BoardIdentity) (*Manifest, error) {
	m, err := Inspect(path)
	if err != nil {
		return nil, err
	}

	names, err := MemberNames(artifacts)
	if err != nil {
		return nil, err
	}
	want := append(names, BoardTypeEntry)
	var missing, unexpected []string
	for _, w := range want {
		if !slices.Contains(m.Members, w) {
			missing = append(missing, w)
		}
	}
	seen := make(map[string]bool, len(m.Members))
	for _, got := range m.Members {
		if !slices.Contains(want, got) || seen[got] {
			unexpected = append(unexpected, got)
		}
		seen[got] = true
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		return m, &MembershipError{Path: path, Missing: missing, Unexpected: unexpected}
	}

	if m.Board != board {
		return m, &BoardMismatchError{Path: path, Expected: board.String(), Actual: m.Board.String()}
	}
	return m, nil
}
