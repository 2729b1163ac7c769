// Package scan recovers the entity set of an already generated project.
package scan

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/csharp"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/merge"
)

// FileLister is the subset of host.Host the scanner needs.
type FileLister interface {
	ListFiles(ctx context.Context, dir string) ([]string, error)
	ReadTextFile(path string) (string, error)
}

// Result is the outcome of a scan.
type Result struct {
	Root string

	// Files are the entity files that were read, in listing order.
	Files []string

	// Entities are merged by name across files; a later file wins.
	Entities []entity.Entity

	// Warnings hold per-file read failures. They never fail the scan.
	Warnings []error
}

// Scanner reads entity files through a FileLister.
type Scanner struct {
	fs     FileLister
	logger *slog.Logger
}

// New creates a Scanner. A nil logger means slog.Default().
func New(fs FileLister, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{fs: fs, logger: logger}
}

// IsEntityFile reports whether p follows the generator's layout:
// <...>/Domain/Entities/<Name>Entity.cs, where the Domain directory may also
// be a "<Project>.Domain" project folder.
func IsEntityFile(p string) bool {
	p = filepath.ToSlash(p)
	base := path.Base(p)
	if !strings.HasSuffix(base, "Entity.cs") || base == "Entity.cs" {
		return false
	}

	parent := path.Dir(p)
	if path.Base(parent) != "Entities" {
		return false
	}

	domain := path.Base(path.Dir(parent))
	return domain == "Domain" || strings.HasSuffix(domain, ".Domain")
}

// Scan lists root, parses every entity file and returns the entities found.
// Files that cannot be read are reported as warnings.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	files, err := s.fs.ListFiles(ctx, root)
	if err != nil {
		return nil, err
	}

	res := &Result{Root: root, Entities: []entity.Entity{}}
	for _, f := range files {
		if !IsEntityFile(f) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := s.fs.ReadTextFile(f)
		if err != nil {
			s.logger.Warn("skipping unreadable entity file", "file", f, "error", err)
			res.Warnings = append(res.Warnings, err)
			continue
		}

		res.Files = append(res.Files, f)
		parsed := csharp.ParseFile(f, text)
		if len(parsed) == 0 {
			s.logger.Debug("no entities in file", "file", f)
			continue
		}
		res.Entities = merge.Merge(res.Entities, parsed, false)
	}

	s.logger.Info("scan finished",
		"root", root,
		"files", len(res.Files),
		"entities", entity.Count(res.Entities))

	return res, nil
}

// Require is Scan that fails when nothing was recovered.
func (s *Scanner) Require(ctx context.Context, root string) (*Result, error) {
	res, err := s.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(res.Entities) == 0 {
		return nil, alerr.New(alerr.ErrNoEntitiesParsed, "no entities found in project").
			With("dir", root).
			WithNote("entity files are expected at Domain/Entities/<Name>Entity.cs")
	}
	return res, nil
}
