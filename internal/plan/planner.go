package plan

import (
	"path/filepath"
	"strings"

	"github.com/backupsync/backupsync/internal/classify"
	"github.com/backupsync/backupsync/internal/index"
)

// Generate diffs src against dst and returns the ordered action list
// described in spec.md §4.6. classification detects project roots and
// always-copy boilerplate within src, used to refuse cross-project
// "moves" of identical boilerplate (§4.5).
func Generate(src, dst *index.Index, classification *classify.Map, srcRoot, dstRoot string) *Plan {
	consumed := make(map[string]struct{}, dst.Len())
	actions := make([]Action, 0, src.Len())

	for _, s := range src.All() {
		if d := dst.ByPath(s.RelativePath); d != nil {
			consumed[s.RelativePath] = struct{}{}

			if d.Digest == s.Digest {
				actions = append(actions, NewSkip(s.RelativePath, "Up-to-date"))
			} else {
				actions = append(actions, NewCopy(
					filepath.Join(srcRoot, filepath.FromSlash(s.RelativePath)),
					s.RelativePath,
					"Content changed",
				))
			}

			continue
		}

		candidates := unconsumed(dst.ByDigest(s.Digest), consumed)

		candidate := bestMoveCandidate(s, candidates)

		switch {
		case candidate != nil && classification.IsCrossProjectBoilerplate(s.RelativePath, candidate.RelativePath):
			actions = append(actions, NewCopy(
				filepath.Join(srcRoot, filepath.FromSlash(s.RelativePath)),
				s.RelativePath,
				"Project boilerplate",
			))
		case candidate != nil:
			consumed[candidate.RelativePath] = struct{}{}
			actions = append(actions, NewMove(candidate.RelativePath, s.RelativePath, "Moved from "+candidate.RelativePath))
		default:
			actions = append(actions, NewCopy(
				filepath.Join(srcRoot, filepath.FromSlash(s.RelativePath)),
				s.RelativePath,
				"New file",
			))
		}
	}

	for _, d := range dst.All() {
		if _, ok := consumed[d.RelativePath]; ok {
			continue
		}
		if src.ByPath(d.RelativePath) != nil {
			continue
		}

		actions = append(actions, NewDelete(d.RelativePath, "Not in source"))
	}

	return &Plan{Actions: actions, SrcRoot: srcRoot, DstRoot: dstRoot}
}

func unconsumed(candidates []*index.FileRecord, consumed map[string]struct{}) []*index.FileRecord {
	out := make([]*index.FileRecord, 0, len(candidates))

	for _, c := range candidates {
		if _, ok := consumed[c.RelativePath]; !ok {
			out = append(out, c)
		}
	}

	return out
}

// bestMoveCandidate implements spec.md §4.6's tie-break: prefer a
// same-basename candidate, then minimize path distance from s.
func bestMoveCandidate(s *index.FileRecord, candidates []*index.FileRecord) *index.FileRecord {
	if len(candidates) == 0 {
		return nil
	}

	srcBase := filepath.Base(s.RelativePath)

	var sameName []*index.FileRecord
	for _, c := range candidates {
		if filepath.Base(c.RelativePath) == srcBase {
			sameName = append(sameName, c)
		}
	}

	pool := candidates
	if len(sameName) > 0 {
		pool = sameName
	}

	best := pool[0]
	bestDist := pathDistance(s.RelativePath, best.RelativePath)

	for _, c := range pool[1:] {
		if d := pathDistance(s.RelativePath, c.RelativePath); d < bestDist {
			best = c
			bestDist = d
		}
	}

	return best
}

// pathDistance sums the directory-depth deviation of both paths from
// their longest common directory prefix.
func pathDistance(a, b string) int {
	partsA := strings.Split(a, "/")
	partsB := strings.Split(b, "/")

	dirsA := partsA[:len(partsA)-1]
	dirsB := partsB[:len(partsB)-1]

	common := 0
	for common < len(dirsA) && common < len(dirsB) && dirsA[common] == dirsB[common] {
		common++
	}

	return (len(dirsA) - common) + (len(dirsB) - common)
}
