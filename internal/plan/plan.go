package plan

// Plan owns an ordered sequence of Actions plus the two root paths they
// were computed against. It borrows neither index (it copies what it
// needs into each Action) and is never mutated after construction.
type Plan struct {
	Actions []Action
	SrcRoot string
	DstRoot string
}

// Skips returns every Skip action.
func (p *Plan) Skips() []Action { return p.filter(Skip) }

// Copies returns every Copy action.
func (p *Plan) Copies() []Action { return p.filter(Copy) }

// Moves returns every Move action.
func (p *Plan) Moves() []Action { return p.filter(Move) }

// Deletes returns every Delete action.
func (p *Plan) Deletes() []Action { return p.filter(Delete) }

// IsEmpty reports whether the plan has no copies, moves, or deletes — a
// no-op run needs nothing but skips.
func (p *Plan) IsEmpty() bool {
	for _, a := range p.Actions {
		if a.Kind != Skip {
			return false
		}
	}

	return true
}

func (p *Plan) filter(kind Kind) []Action {
	var out []Action

	for _, a := range p.Actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}

	return out
}
