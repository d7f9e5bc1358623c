// Package plan diffs a source and destination Index into an ordered
// sequence of SyncActions (C6).
package plan

// Kind identifies which of the four closed SyncAction cases an Action
// represents.
type Kind int

const (
	Skip Kind = iota
	Copy
	Move
	Delete
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case Copy:
		return "copy"
	case Move:
		return "move"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

// Action is a tagged union over the four SyncAction cases. Only the
// fields relevant to Kind are populated; the four constructors below are
// the single construction sites, matching the planner being the sole
// decision point (spec.md §9).
type Action struct {
	Kind Kind

	// DstRelativePath is common to every case.
	DstRelativePath string

	// SrcAbsPath is the absolute source-tree path to read from, for Copy.
	SrcAbsPath string

	// MoveFromRelativePath is the destination-tree relative path being
	// vacated, for Move.
	MoveFromRelativePath string

	Reason string
}

// NewSkip constructs a Skip action for a file unchanged between indexes.
func NewSkip(dstRelPath, reason string) Action {
	return Action{Kind: Skip, DstRelativePath: dstRelPath, Reason: reason}
}

// NewCopy constructs a Copy action: read srcAbsPath, write to dstRelPath.
func NewCopy(srcAbsPath, dstRelPath, reason string) Action {
	return Action{Kind: Copy, SrcAbsPath: srcAbsPath, DstRelativePath: dstRelPath, Reason: reason}
}

// NewMove constructs a Move action: rename moveFromRelPath to dstRelPath
// within the destination tree.
func NewMove(moveFromRelPath, dstRelPath, reason string) Action {
	return Action{
		Kind:                 Move,
		MoveFromRelativePath: moveFromRelPath,
		DstRelativePath:      dstRelPath,
		Reason:               reason,
	}
}

// NewDelete constructs a Delete action for a destination file absent from
// the source.
func NewDelete(dstRelPath, reason string) Action {
	return Action{Kind: Delete, DstRelativePath: dstRelPath, Reason: reason}
}
