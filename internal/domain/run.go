package domain

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	FileOutcomeSucceeded = "succeeded"
	FileOutcomeFailed    = "failed"
)

// SourceFile is an accepted image under the input root.
type SourceFile struct {
	AbsPath string
	RelPath string
	Name    string
	Stem    string
	Ext     string
}

func NewSourceFile(root, path string) (SourceFile, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return SourceFile{}, err
	}
	name := filepath.Base(path)
	rawExt := filepath.Ext(name)
	return SourceFile{
		AbsPath: path,
		RelPath: rel,
		Name:    name,
		Stem:    strings.TrimSuffix(name, rawExt),
		Ext:     strings.ToLower(rawExt),
	}, nil
}

// RelDir is the source's directory relative to the input root ("." at the top level).
func (s SourceFile) RelDir() string {
	return filepath.Dir(s.RelPath)
}

type Summary struct {
	RunID           string    `json:"run_id"`
	InputRoot       string    `json:"input_root"`
	OutputRoot      string    `json:"output_root"`
	Discovered      int       `json:"discovered"`
	OriginalsCopied int       `json:"originals_copied"`
	Augmented       int       `json:"augmented"`
	FailedFiles     int       `json:"failed_files"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
