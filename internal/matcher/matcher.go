package matcher

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shiftboard/hours-import/internal/domain"
)

// Match 将解析出的员工姓名与员工名录逐一匹配。
// 匹配顺序固定：手动映射 > 名字完全一致 > 全名完全一致 > 姓氏完全一致 > 子串匹配 > 未匹配。
// 结果只取决于传入的名录快照和手动映射。
func Match(parsed []domain.ParsedWorker, directory []domain.DirectoryEntry, overrides map[string]int64) []domain.MatchedWorker {
	matched := make([]domain.MatchedWorker, 0, len(parsed))
	for _, p := range parsed {
		matched = append(matched, MatchOne(p, directory, overrides))
	}
	return matched
}

func MatchOne(p domain.ParsedWorker, directory []domain.DirectoryEntry, overrides map[string]int64) domain.MatchedWorker {
	if id, ok := overrides[p.Name]; ok {
		if entry, found := findByID(directory, id); found {
			return matchedWith(p, entry, domain.MatchStatusMatched)
		}
	}

	name := normalize(p.Name)

	if entry, found := findFirst(directory, func(e domain.DirectoryEntry) bool {
		return normalize(e.FirstName) == name
	}); found {
		return matchedWith(p, entry, domain.MatchStatusMatched)
	}

	if entry, found := findFirst(directory, func(e domain.DirectoryEntry) bool {
		return normalize(e.FirstName+" "+e.LastName) == name
	}); found {
		return matchedWith(p, entry, domain.MatchStatusMatched)
	}

	if entry, found := findFirst(directory, func(e domain.DirectoryEntry) bool {
		return normalize(e.LastName) == name
	}); found {
		return matchedWith(p, entry, domain.MatchStatusMatched)
	}

	substring := substringCandidates(directory, name)
	switch {
	case len(substring) == 1:
		mw := matchedWith(p, substring[0], domain.MatchStatusPartial)
		mw.Candidates = toCandidates(substring)
		return mw
	case len(substring) > 1:
		// 多个候选时不替用户做选择，全部交给人工确认
		return domain.MatchedWorker{
			ParsedWorker: p,
			MatchStatus:  domain.MatchStatusUnmatched,
			Candidates:   toCandidates(substring),
		}
	}

	return domain.MatchedWorker{
		ParsedWorker: p,
		MatchStatus:  domain.MatchStatusUnmatched,
		Candidates:   toCandidates(rankDirectory(directory, p.Name)),
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func findByID(directory []domain.DirectoryEntry, id int64) (domain.DirectoryEntry, bool) {
	return findFirst(directory, func(e domain.DirectoryEntry) bool { return e.ID == id })
}

func findFirst(directory []domain.DirectoryEntry, pred func(domain.DirectoryEntry) bool) (domain.DirectoryEntry, bool) {
	for _, e := range directory {
		if pred(e) {
			return e, true
		}
	}
	return domain.DirectoryEntry{}, false
}

func substringCandidates(directory []domain.DirectoryEntry, name string) []domain.DirectoryEntry {
	if name == "" {
		return nil
	}

	var out []domain.DirectoryEntry
	for _, e := range directory {
		if overlaps(normalize(e.FirstName), name) || overlaps(normalize(e.LastName), name) {
			out = append(out, e)
		}
	}
	return out
}

// overlaps 判断两个字符串是否互相包含，空串不算
func overlaps(part, name string) bool {
	if part == "" {
		return false
	}
	return strings.Contains(part, name) || strings.Contains(name, part)
}

// rankDirectory 返回整个名录，模糊匹配得上的排在前面，其余保持名录原有顺序
func rankDirectory(directory []domain.DirectoryEntry, name string) []domain.DirectoryEntry {
	targets := make([]string, len(directory))
	for i, e := range directory {
		targets[i] = e.DisplayName()
	}

	ranks := fuzzy.RankFindNormalizedFold(strings.TrimSpace(name), targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	ordered := make([]domain.DirectoryEntry, 0, len(directory))
	picked := make(map[int]bool, len(ranks))
	for _, r := range ranks {
		ordered = append(ordered, directory[r.OriginalIndex])
		picked[r.OriginalIndex] = true
	}
	for i, e := range directory {
		if !picked[i] {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

func matchedWith(p domain.ParsedWorker, entry domain.DirectoryEntry, status domain.MatchStatus) domain.MatchedWorker {
	id := entry.ID
	return domain.MatchedWorker{
		ParsedWorker:       p,
		MatchedDirectoryID: &id,
		MatchedDisplayName: entry.DisplayName(),
		MatchStatus:        status,
		Candidates:         make([]domain.MatchCandidate, 0),
	}
}

func toCandidates(entries []domain.DirectoryEntry) []domain.MatchCandidate {
	candidates := make([]domain.MatchCandidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, domain.MatchCandidate{ID: e.ID, DisplayName: e.DisplayName()})
	}
	return candidates
}
