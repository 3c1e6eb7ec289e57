// Package scanner finds utility classes in markup: class attribute values in
// open documents and in files on disk.
package scanner

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultAttributes are the attributes holding class lists
var DefaultAttributes = []string{"class", "className", "ngClass", ":class"}

// ClassList is the value of one class attribute
type ClassList struct {
	Attribute  string
	Value      string
	Offset     int  // Byte offset of Value in the text
	Terminated bool // False when the closing quote is missing (still typing)
}

// End is the byte offset just past Value
func (l ClassList) End() int {
	return l.Offset + len(l.Value)
}

// Class is one class token of a class list
type Class struct {
	Name   string
	Offset int // Byte offset in the text
}

// Classes splits the list on whitespace, keeping offsets
func (l ClassList) Classes() []Class {
	var out []Class
	start := -1
	for i, r := range l.Value {
		if unicode.IsSpace(r) {
			if start >= 0 {
				out = append(out, Class{Name: l.Value[start:i], Offset: l.Offset + start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, Class{Name: l.Value[start:], Offset: l.Offset + start})
	}
	return out
}

// Matcher finds class lists for a fixed set of attribute names
type Matcher struct {
	attributes []string
	re         *regexp.Regexp
}

// NewMatcher compiles a matcher. Empty attributes fall back to
// DefaultAttributes.
func NewMatcher(attributes []string) *Matcher {
	if len(attributes) == 0 {
		attributes = DefaultAttributes
	}

	quoted := make([]string, len(attributes))
	for i, a := range attributes {
		quoted[i] = regexp.QuoteMeta(a)
	}

	// attr = "..." | attr='...' | attr={"..."} | attr={`...`}
	re := regexp.MustCompile(`(?:^|[^\w:-])(` + strings.Join(quoted, "|") + `)\s*=\s*\{?\s*(["'` + "`" + `])`)
	return &Matcher{attributes: attributes, re: re}
}

// Attributes returns the attribute names the matcher looks for
func (m *Matcher) Attributes() []string {
	return m.attributes
}

// FindAll returns every class list in text, in order
func (m *Matcher) FindAll(text string) []ClassList {
	var out []ClassList

	for _, match := range m.re.FindAllStringSubmatchIndex(text, -1) {
		attr := text[match[2]:match[3]]
		quote := text[match[4]]
		start := match[5]

		list := ClassList{Attribute: attr, Offset: start}
		if end := strings.IndexByte(text[start:], quote); end >= 0 {
			list.Value = text[start : start+end]
			list.Terminated = true
		} else {
			list.Value = text[start:]
		}
		out = append(out, list)
	}
	return out
}

// At returns the class list whose value contains offset. An offset right
// after the last character still counts, so completion works at the end of
// a value.
func (m *Matcher) At(text string, offset int) (ClassList, bool) {
	for _, l := range m.FindAll(text) {
		if offset >= l.Offset && offset <= l.End() {
			return l, true
		}
		if l.Offset > offset {
			break
		}
	}
	return ClassList{}, false
}

// FileLocation is a position in a file on disk
type FileLocation struct {
	File   string
	Line   int    // 1-based
	Column int    // 1-based byte column of the class name
	Text   string // Trimmed source line
}

// ClassReference is one class found in a file
type ClassReference struct {
	ClassName string
	Location  FileLocation
}

// ScanStats tracks file scanning statistics
type ScanStats struct {
	FilesDiscovered int // Total files found by glob patterns
	FilesScanned    int // Files actually scanned (after filtering)
	FilesSkipped    int // Files skipped by .gitignore
}

// Scanner scans files on disk
type Scanner struct {
	matcher   *Matcher
	gitignore *ignore.GitIgnore
}

// New creates a scanner. gitignorePath may be empty or point to a missing
// file; ignore rules are then not applied.
func New(attributes []string, gitignorePath string) *Scanner {
	s := &Scanner{matcher: NewMatcher(attributes)}
	if gitignorePath != "" {
		if gi, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			s.gitignore = gi
		}
	}
	return s
}

// Matcher returns the scanner's class list matcher
func (s *Scanner) Matcher() *Matcher {
	return s.matcher
}

// ExpandGlobs expands doublestar patterns to regular files, skipping ignored
// paths. Only relative paths are checked against .gitignore.
func (s *Scanner) ExpandGlobs(patterns []string) ([]string, ScanStats, error) {
	var files []string
	seen := make(map[string]bool)
	stats := ScanStats{}

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, stats, err
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++

			if s.skip(match) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
			stats.FilesScanned++
		}
	}

	return files, stats, nil
}

func (s *Scanner) skip(path string) bool {
	if s.gitignore == nil || filepath.IsAbs(path) {
		return false
	}
	return s.gitignore.MatchesPath(path)
}

// ScanFiles scans files matching patterns for class references. Unreadable
// files are skipped.
func (s *Scanner) ScanFiles(patterns []string) ([]ClassReference, ScanStats, error) {
	files, stats, err := s.ExpandGlobs(patterns)
	if err != nil {
		return nil, stats, err
	}

	var refs []ClassReference
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		refs = append(refs, s.ScanText(file, string(data))...)
	}
	return refs, stats, nil
}

// ScanText returns the class references in text
func (s *Scanner) ScanText(file, text string) []ClassReference {
	var refs []ClassReference
	lines := newLineIndex(text)

	for _, list := range s.matcher.FindAll(text) {
		if !list.Terminated {
			continue
		}
		for _, c := range list.Classes() {
			line, col := lines.position(c.Offset)
			refs = append(refs, ClassReference{
				ClassName: c.Name,
				Location: FileLocation{
					File:   file,
					Line:   line + 1,
					Column: col + 1,
					Text:   strings.TrimSpace(lines.text(text, line)),
				},
			})
		}
	}
	return refs
}

// UniqueClasses returns class names in first-seen order
func UniqueClasses(refs []ClassReference) []string {
	seen := make(map[string]bool, len(refs))
	var out []string
	for _, r := range refs {
		if !seen[r.ClassName] {
			seen[r.ClassName] = true
			out = append(out, r.ClassName)
		}
	}
	return out
}

// lineIndex maps byte offsets to 0-based line and byte column
type lineIndex []int

func newLineIndex(text string) lineIndex {
	starts := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (l lineIndex) position(offset int) (int, int) {
	lo, hi := 0, len(l)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if l[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - l[lo]
}

func (l lineIndex) text(src string, line int) string {
	start := l[line]
	end := len(src)
	if line+1 < len(l) {
		end = l[line+1] - 1
	}
	return strings.TrimSuffix(src[start:end], "\r")
}
