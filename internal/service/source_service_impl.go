package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alexanderramin/kallan/internal/rubric"
)

// LintReport lists the problems found in one rubric document. Errs is empty
// for a clean document.
type LintReport struct {
	Path     string
	SourceID string
	Errs     []error
}

func (r LintReport) OK() bool { return len(r.Errs) == 0 }

type sourceService struct {
	rubricDir string
	observer  UseCaseObserver
}

func NewSourceService(rubricDir string, observers ...UseCaseObserver) SourceService {
	return &sourceService{
		rubricDir: rubricDir,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// List loads the catalog fresh on every call so edits show up without a
// restart. Documents that fail to parse are skipped and reported in err.
func (s *sourceService) List(ctx context.Context) (sources []*rubric.Source, err error) {
	startedAt := time.Now()
	fields := map[string]any{"dir": s.rubricDir}
	defer func() { observe(ctx, s.observer, "list-sources", startedAt, err, fields) }()

	cat, err := rubric.LoadDir(s.rubricDir)
	if cat == nil {
		return nil, err
	}
	sources = cat.List()
	fields["count"] = len(sources)
	if err != nil {
		return sources, fmt.Errorf("loading rubrics: %w", err)
	}
	return sources, nil
}

func (s *sourceService) Get(ctx context.Context, id string) (*rubric.Source, error) {
	cat, err := rubric.LoadDir(s.rubricDir)
	if cat == nil {
		return nil, err
	}
	// A broken sibling document does not prevent loading a valid one.
	return cat.Get(id)
}

func (s *sourceService) Lint(ctx context.Context) ([]LintReport, error) {
	entries, err := os.ReadDir(s.rubricDir)
	if err != nil {
		return nil, fmt.Errorf("reading rubric directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && rubric.IsRubricFile(e.Name()) {
			paths = append(paths, filepath.Join(s.rubricDir, e.Name()))
		}
	}
	sort.Strings(paths)

	reports := make([]LintReport, 0, len(paths))
	for _, p := range paths {
		reports = append(reports, s.LintFile(ctx, p))
	}
	return reports, nil
}

func (s *sourceService) LintFile(ctx context.Context, path string) LintReport {
	report := LintReport{Path: path}
	doc, err := rubric.LoadDocument(path)
	if err != nil {
		report.Errs = []error{err}
		return report
	}
	report.SourceID = doc.ID
	report.Errs = rubric.Validate(doc)
	return report
}
