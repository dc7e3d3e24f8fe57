// Package changelog serializes change sets to the XML changelog file
// the build server parses between builds.
package changelog

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/szigetigabor/simpleclearcase-plugin/internal/scm"
)

type xmlChangelog struct {
	XMLName xml.Name   `xml:"changelog"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Time    string    `xml:"revision-time,attr"`
	Author  string    `xml:"author"`
	Comment string    `xml:"comment"`
	Files   []xmlFile `xml:"file"`
}

type xmlFile struct {
	Version string `xml:"version,attr"`
	Path    string `xml:",chardata"`
}

// Write serializes the set's entries in their stored order.
func Write(w io.Writer, set *scm.ChangeSet) error {
	doc := xmlChangelog{}
	if set != nil {
		doc.Entries = make([]xmlEntry, 0, len(set.Entries))
		for _, e := range set.Entries {
			files := make([]xmlFile, 0, len(e.Files))
			for _, f := range e.Files {
				files = append(files, xmlFile{Version: f.Version, Path: f.Path})
			}
			doc.Entries = append(doc.Entries, xmlEntry{
				Time:    e.Time.Format(scm.TimestampLayout),
				Author:  e.Author,
				Comment: e.Comment,
				Files:   files,
			})
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode changelog: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Read parses a changelog document back into entries, in document
// order.
func Read(r io.Reader) ([]scm.ChangeEntry, error) {
	var doc xmlChangelog
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode changelog: %w", err)
	}

	entries := make([]scm.ChangeEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		when, err := time.ParseInLocation(scm.TimestampLayout, e.Time, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse revision-time %q: %w", e.Time, err)
		}
		files := make([]scm.FileElement, 0, len(e.Files))
		for _, f := range e.Files {
			elem := scm.FileElement{Path: strings.TrimSpace(f.Path), Version: f.Version}
			if elem.Version == "" {
				elem.Version = scm.InitialVersion
			}
			files = append(files, elem)
		}
		entries = append(entries, scm.ChangeEntry{
			Time:    when,
			Author:  e.Author,
			Files:   files,
			Comment: e.Comment,
		})
	}
	return entries, nil
}

// WriteFile writes the changelog to path, creating or truncating it.
func WriteFile(path string, set *scm.ChangeSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, set); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile parses the changelog at path.
func ReadFile(path string) ([]scm.ChangeEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// FileWriter is the engine-facing changelog writer backed by the
// filesystem.
type FileWriter struct{}

// Write persists the set at dest.
func (FileWriter) Write(dest string, set *scm.ChangeSet) error {
	return WriteFile(dest, set)
}

// Compile-time interface conformance check.
var _ scm.ChangelogWriter = FileWriter{}
