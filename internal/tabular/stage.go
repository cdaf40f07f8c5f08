package tabular

import "strconv"

// StageKind is one of the three record lifecycle stages.
type StageKind string

const (
	StageCurrent  StageKind = "current"
	StageProposed StageKind = "proposed"
	StageArchived StageKind = "archived"
)

// Stage is a resolved version stage. For Current it carries the highest
// version id recorded against the table (0 when no commit exists yet); for
// Archived it carries the requested literal id.
type Stage struct {
	Kind StageKind
	ID   int64
}

// ResolveStage turns a user-supplied version token into a concrete stage.
// The empty token and "current" resolve to the current stage at latestID;
// "proposed" needs no id; a numeric token selects that archived version.
// Anything else is an InvalidVersionToken error.
func ResolveStage(token string, latestID int64) (Stage, error) {
	switch token {
	case "", string(StageCurrent):
		return Stage{Kind: StageCurrent, ID: latestID}, nil
	case string(StageProposed):
		return Stage{Kind: StageProposed}, nil
	}
	id, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return Stage{}, &Error{Kind: InvalidVersionToken, Value: token, Err: err}
	}
	return Stage{Kind: StageArchived, ID: id}, nil
}

// MatchAll reports whether a record with the given version markers belongs to
// the cumulative view up to and including this stage.
//
// For an archived stage whose id equals the live current version, records
// with a null version_last and version_first equal to the id still match:
// the cumulative view at that id includes what is current at that id. Callers
// expecting a strictly-historical slice must filter separately.
func (s Stage) MatchAll(first, last *int64) bool {
	switch s.Kind {
	case StageCurrent:
		return first != nil && last == nil
	case StageProposed:
		return last == nil
	case StageArchived:
		return first != nil && *first <= s.ID
	}
	return false
}

// MatchChanges reports whether a record's transition is attributable to
// exactly this stage.
func (s Stage) MatchChanges(first, last *int64) bool {
	switch s.Kind {
	case StageCurrent, StageArchived:
		return first != nil && *first == s.ID
	case StageProposed:
		return first == nil && last == nil
	}
	return false
}
