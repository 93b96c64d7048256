// Package filterlist loads allow- and deny-lists of record identifiers
// from CSV files (optionally gzip-compressed) and answers membership
// queries during stream processing.
package filterlist

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadError reports an unusable filter-list file. Filter-list failures
// are fatal; they surface before any record is processed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load filter list %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// List combines allow- and deny-sets. A record is eligible iff its PPN
// is in the allow-set (when one is configured) and not in the deny-set.
type List struct {
	allow map[string]struct{}
	deny  map[string]struct{}
}

// New returns an empty list that accepts every record.
func New() *List {
	return &List{}
}

// Allow loads the given CSV files into the allow-set.
func (l *List) Allow(paths []string, column string) error {
	for _, path := range paths {
		if err := l.load(path, column, &l.allow); err != nil {
			return err
		}
	}
	return nil
}

// Deny loads the given CSV files into the deny-set.
func (l *List) Deny(paths []string, column string) error {
	for _, path := range paths {
		if err := l.load(path, column, &l.deny); err != nil {
			return err
		}
	}
	return nil
}

// Check reports whether a record with the given PPN is eligible. A nil
// PPN is only eligible when no allow-list is configured.
func (l *List) Check(ppn []byte) bool {
	if l.allow != nil {
		if _, ok := l.allow[string(ppn)]; !ok {
			return false
		}
	}
	if l.deny != nil {
		if _, ok := l.deny[string(ppn)]; ok {
			return false
		}
	}
	return true
}

// load reads one CSV file into set. The identifier column defaults to
// "ppn", falling back to "idn"; column overrides the default.
func (l *List) load(path, column string, set *map[string]struct{}) error {
	file, err := os.Open(path)
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return &LoadError{Path: path, Err: err}
		}
		defer gz.Close()
		reader = gz
	}

	cr := csv.NewReader(reader)
	if strings.Contains(path, ".tsv") {
		cr.Comma = '\t'
	}

	header, err := cr.Read()
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}

	index := -1
	if column != "" {
		for i, name := range header {
			if name == column {
				index = i
			}
		}
		if index < 0 {
			return &LoadError{Path: path, Err: fmt.Errorf("no column %q", column)}
		}
	} else {
		for _, name := range []string{"ppn", "idn"} {
			for i, h := range header {
				if h == name {
					index = i
					break
				}
			}
			if index >= 0 {
				break
			}
		}
		if index < 0 {
			return &LoadError{Path: path, Err: fmt.Errorf("neither a ppn nor an idn column")}
		}
	}

	if *set == nil {
		*set = make(map[string]struct{})
	}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &LoadError{Path: path, Err: err}
		}
		if index < len(row) {
			(*set)[row[index]] = struct{}{}
		}
	}
}
