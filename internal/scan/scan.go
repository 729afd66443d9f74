// Package scan discovers input media and maps each file to its mirrored
// output path.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Kind classifies a discovered file.
type Kind string

const (
	// KindVideo marks files eligible for encode planning.
	KindVideo Kind = "video"
	// KindOther marks files that are mirrored with a plain copy.
	KindOther Kind = "other"
)

// Item is one discovered input file with its resolved output path.
type Item struct {
	Input   string
	Output  string
	RelPath string
	Kind    Kind
}

// Scanner walks an input tree and produces Items in lexical order.
type Scanner struct {
	inputRoot  string
	outputRoot string
	isVideo    func(path string) bool
}

// New constructs a Scanner. isVideo decides classification, typically
// config.IsVideoPath.
func New(inputRoot, outputRoot string, isVideo func(path string) bool) *Scanner {
	return &Scanner{inputRoot: inputRoot, outputRoot: outputRoot, isVideo: isVideo}
}

// Walk traverses the input tree and returns every regular file as an Item.
// Hidden files and directories (dot-prefixed) are ignored. Traversal order
// is lexical, so repeated runs visit files in the same order.
func (s *Scanner) Walk() ([]Item, error) {
	var items []Item
	err := filepath.WalkDir(s.inputRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != s.inputRoot {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.inputRoot, path)
		if err != nil {
			return err
		}
		kind := KindOther
		if s.isVideo != nil && s.isVideo(path) {
			kind = KindVideo
		}
		items = append(items, Item{
			Input:   path,
			Output:  filepath.Join(s.outputRoot, OutputRelPath(rel, kind)),
			RelPath: rel,
			Kind:    kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.inputRoot, err)
	}
	return items, nil
}

// OutputRelPath maps an input-relative path to its output-relative path.
// Video files in an .m4v container are written as .mp4; everything else
// keeps its name.
func OutputRelPath(rel string, kind Kind) string {
	if kind == KindVideo && strings.EqualFold(filepath.Ext(rel), ".m4v") {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".mp4"
	}
	return rel
}
