package analyze

import (
	"context"
	"errors"
	"io/fs"

	"github.com/lakshaymaurya-felt/tuxmole/internal/clean"
	"github.com/lakshaymaurya-felt/tuxmole/internal/config"
	"github.com/lakshaymaurya-felt/tuxmole/pkg/whitelist"
)

// Estimate is what an operation would reclaim right now.
type Estimate struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Files int         `json:"files"`
	Bytes int64       `json:"bytes"`
	Trees []*DirEntry `json:"-"`
}

// Estimate measures the files op would remove. Files reached by more than
// one step are counted once and protected files are left out. External
// tools are not measured.
func (s *Scanner) Estimate(ctx context.Context, op config.Operation, wl *whitelist.Whitelist) (Estimate, error) {
	est := Estimate{ID: op.ID, Name: op.Name}
	seen := make(map[string]bool)

	add := func(root string, match func(string) bool) error {
		tree, err := s.Scan(ctx, root, match)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !errors.Is(err, fs.ErrNotExist) {
				s.addWarning("cannot scan " + root + ": " + err.Error())
			}
			return nil
		}
		for leaf := range tree.Leaves() {
			if seen[leaf.Path] || wl.IsWhitelisted(leaf.Path) {
				continue
			}
			seen[leaf.Path] = true
			est.Files++
			est.Bytes += leaf.Size
		}
		if tree.Files > 0 {
			est.Trees = append(est.Trees, tree)
		}
		return nil
	}

	for _, step := range op.Steps {
		var err error
		switch step.Kind {
		case config.StepDirectoryPurge:
			err = add(step.Path, nil)
		case config.StepPatternPurge:
			err = add(step.Path, clean.ParsePattern(step.Pattern).Match)
		case config.StepDiscoverPurge:
			for dir := range clean.FindDirs(step.Path, step.DirName) {
				if err = add(dir, nil); err != nil {
					break
				}
			}
		}
		if err != nil {
			return est, err
		}
	}
	return est, nil
}

// EstimateAll measures each operation in turn, stopping at the first error.
func (s *Scanner) EstimateAll(ctx context.Context, ops []config.Operation, wl *whitelist.Whitelist) ([]Estimate, error) {
	out := make([]Estimate, 0, len(ops))
	for _, op := range ops {
		est, err := s.Estimate(ctx, op, wl)
		if err != nil {
			return out, err
		}
		out = append(out, est)
	}
	return out, nil
}
