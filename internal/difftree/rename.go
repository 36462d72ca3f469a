package difftree

import (
	"hash/fnv"

	"diffpack/internal/linediff"
)

// jaccardMargin relaxes the similarity threshold for the line-set
// pre-filter: a pair is only worth a full line diff when its Jaccard score
// reaches threshold*jaccardMargin.
const jaccardMargin = 0.7

// basenameBoost multiplies the similarity score when the old and new path
// share a basename. The boosted score may exceed 1.0.
const basenameBoost = 1.2

// detectRenames pairs deleted paths (present only in from) with added paths
// (present only in to). Each deleted path is used at most once.
//
// Phase 1 matches exact content via a 64-bit hash bucket with byte-equality
// confirmation. Phase 2 scores the remaining pairs with a line-level
// similarity, guarded by a length-ratio filter and a Jaccard line-set
// pre-filter so most pairs never pay for the full diff.
//
// Determinism: both deleted and added are iterated in sorted order; on equal
// boosted scores the last candidate seen wins.
func (b *Builder) detectRenames(deleted, added []string) map[string]string {
	renames := make(map[string]string)
	used := make(map[string]struct{})

	// Phase 1: exact content matches via hash buckets.
	delByHash := make(map[uint64][]string)
	for _, delPath := range deleted {
		if content, ok := fileContent(b.fromFiles, delPath); ok {
			h := hashContent(content)
			delByHash[h] = append(delByHash[h], delPath)
		}
	}

	for _, addPath := range added {
		addContent, ok := fileContent(b.toFiles, addPath)
		if !ok {
			continue
		}
		for _, delPath := range delByHash[hashContent(addContent)] {
			if _, taken := used[delPath]; taken {
				continue
			}
			delContent, ok := fileContent(b.fromFiles, delPath)
			if !ok {
				continue
			}
			if addContent == delContent {
				renames[addPath] = delPath
				used[delPath] = struct{}{}
				break
			}
		}
	}

	// Phase 2: similarity matches with multi-stage filtering.
	delLineSets := make(map[string]map[string]struct{})
	for _, delPath := range deleted {
		if _, taken := used[delPath]; taken {
			continue
		}
		if content, ok := fileContent(b.fromFiles, delPath); ok {
			delLineSets[delPath] = lineSet(content)
		}
	}

	for _, addPath := range added {
		if _, done := renames[addPath]; done {
			continue
		}
		addContent, ok := fileContent(b.toFiles, addPath)
		if !ok {
			continue
		}

		addLines := lineSet(addContent)
		addName := basename(addPath)

		bestPath := ""
		bestScore := 0.0
		found := false

		for _, delPath := range deleted {
			if _, taken := used[delPath]; taken {
				continue
			}
			delContent, ok := fileContent(b.fromFiles, delPath)
			if !ok {
				continue
			}

			// Filter 1: length ratio.
			if !b.canBeSimilar(delContent, addContent) {
				continue
			}

			// Filter 2: Jaccard on line sets.
			if jaccard(addLines, delLineSets[delPath]) < b.threshold*jaccardMargin {
				continue
			}

			// Filter 3: full line diff, only for survivors.
			score := linediff.Similarity(delContent, addContent)
			if basename(delPath) == addName {
				score *= basenameBoost
			}

			if score >= b.threshold && (!found || score >= bestScore) {
				bestPath = delPath
				bestScore = score
				found = true
			}
		}

		if found {
			renames[addPath] = bestPath
			used[bestPath] = struct{}{}
		}
	}

	return renames
}

// canBeSimilar is the cheap size filter: the byte-length ratio must fall
// within [threshold, 1/threshold].
func (b *Builder) canBeSimilar(from, to string) bool {
	denom := len(to)
	if denom < 1 {
		denom = 1
	}
	ratio := float64(len(from)) / float64(denom)
	return ratio >= b.threshold && ratio <= 1.0/b.threshold
}

// jaccard is |A∩B| / |A∪B| over line sets. Both empty scores 1.0, an empty
// union 0.0.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	intersection := 0
	for line := range a {
		if _, ok := b[line]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// lineSet is the set of distinct '\n'-separated lines of a blob.
func lineSet(content string) map[string]struct{} {
	lines := linediff.Split(content)
	out := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		out[line] = struct{}{}
	}
	return out
}

// hashContent is a stable non-cryptographic 64-bit digest; collisions are
// resolved by full content equality at the call site.
func hashContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}
