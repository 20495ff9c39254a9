// Package browse derives the player-grouped index of persisted reports.
package browse

import (
	"sort"
	"strings"

	"github.com/okian/scout/internal/domain/grading"
	"github.com/okian/scout/internal/domain/model"
)

// UnnamedPlayer is shown for groups whose newest report has no name.
const UnnamedPlayer = "—"

// Filter narrows the reports before grouping. Zero values match everything.
type Filter struct {
	Search     string `json:"search"`
	PositionID string `json:"position"`
}

// Matches reports whether r passes both predicates.
func (f Filter) Matches(r *model.Report) bool {
	if f.PositionID != "" && r.PositionID != f.PositionID {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Club), q)
}

// Group is every report about one player.
type Group struct {
	Key       string         `json:"key"`
	Name      string         `json:"name"`
	Club      string         `json:"club"`
	Reports   []model.Report `json:"reports"`
	Overall   grading.Grade  `json:"overall,omitempty"`
	Graded    bool           `json:"graded"`
	Positions []string       `json:"positions"`
}

// Latest is the newest report of the group.
func (g *Group) Latest() model.Report {
	return g.Reports[0]
}

// Initials are up to two leading letters of the player's name.
func (g *Group) Initials() string {
	return Initials(g.Name)
}

// Key is the grouping key for r: its trimmed lowercase name, or its id when
// unnamed so unnamed reports never share a group.
func Key(r *model.Report) string {
	if k := strings.ToLower(strings.TrimSpace(r.Name)); k != "" {
		return k
	}
	return r.ID
}

// Build filters reports and groups them by player.
func Build(reports []model.Report, f Filter) []Group {
	byKey := make(map[string][]model.Report)
	for i := range reports {
		if !f.Matches(&reports[i]) {
			continue
		}
		k := Key(&reports[i])
		byKey[k] = append(byKey[k], reports[i].Clone())
	}

	groups := make([]Group, 0, len(byKey))
	for k, rs := range byKey {
		groups = append(groups, newGroup(k, rs))
	}

	sort.Slice(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].Name), strings.ToLower(groups[j].Name)
		if a != b {
			return a < b
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Find returns the unfiltered group for key.
func Find(reports []model.Report, key string) (Group, bool) {
	var rs []model.Report
	for i := range reports {
		if Key(&reports[i]) == key {
			rs = append(rs, reports[i].Clone())
		}
	}
	if len(rs) == 0 {
		return Group{}, false
	}
	return newGroup(key, rs), true
}

func newGroup(key string, rs []model.Report) Group {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt != rs[j].CreatedAt {
			return rs[i].CreatedAt > rs[j].CreatedAt
		}
		return rs[i].ID < rs[j].ID
	})

	latest := rs[0]
	g := Group{
		Key:     key,
		Name:    latest.Name,
		Club:    latest.Club,
		Reports: rs,
	}
	if strings.TrimSpace(g.Name) == "" {
		g.Name = UnnamedPlayer
	}
	g.Overall, g.Graded = latest.Overall()

	seen := make(map[string]bool)
	for i := range rs {
		if _, ok := grading.Lookup(rs[i].PositionID); !ok {
			continue
		}
		label := grading.Label(rs[i].PositionID)
		if !seen[label] {
			seen[label] = true
			g.Positions = append(g.Positions, label)
		}
	}
	return g
}

// Initials returns the upper-cased first letters of the first two words of name.
func Initials(name string) string {
	var letters []rune
	for _, w := range strings.Fields(name) {
		letters = append(letters, []rune(w)[0])
		if len(letters) == 2 {
			break
		}
	}
	if len(letters) == 0 {
		return "?"
	}
	return strings.ToUpper(string(letters))
}
