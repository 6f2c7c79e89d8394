package refs

import (
	"sort"

	"github.com/jward/gdlens/internal/semantic"
)

type posKey struct {
	file      string
	line, col int
}

func keyOf(r semantic.Reference) posKey { return posKey{r.File, r.Line, r.Column} }

// accumulator holds at most one reference per source position.
type accumulator struct {
	refs map[posKey]semantic.Reference
}

func newAccumulator() *accumulator {
	return &accumulator{refs: make(map[posKey]semantic.Reference)}
}

func (a *accumulator) add(r semantic.Reference) {
	k := keyOf(r)
	if old, ok := a.refs[k]; ok {
		r = merge(old, r)
	}
	a.refs[k] = r
}

// dropPlain removes plain reads, calls and contract strings on the same
// line as keep. A connect call names its callback once; the connection
// replaces that occurrence.
func (a *accumulator) dropPlain(keep posKey) {
	for k, r := range a.refs {
		if k.file != keep.file || k.line != keep.line || k == keep {
			continue
		}
		switch r.Kind {
		case semantic.Read, semantic.Call, semantic.ContractString:
			delete(a.refs, k)
		}
	}
}

func (a *accumulator) sorted() []semantic.Reference {
	out := make([]semantic.Reference, 0, len(a.refs))
	for _, r := range a.refs {
		out = append(out, r)
	}
	sortRefs(out)
	return out
}

func sortRefs(refs []semantic.Reference) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// merge combines two references at the same position. The stronger kind
// wins, then the stronger confidence. Flags are OR-ed. The winner keeps
// its reason unless it has none, in which case it takes the loser's.
func merge(existing, incoming semantic.Reference) semantic.Reference {
	win, lose := existing, incoming
	if outranks(incoming, existing) {
		win, lose = incoming, existing
	}
	win.IsInherited = win.IsInherited || lose.IsInherited
	win.IsOverride = win.IsOverride || lose.IsOverride
	win.IsSceneSignal = win.IsSceneSignal || lose.IsSceneSignal
	if win.SignalName == "" {
		win.SignalName = lose.SignalName
	}
	if win.CallerType == "" {
		win.CallerType = lose.CallerType
	}
	if win.Reason == "" {
		win.Reason = lose.Reason
	}
	return win
}

func outranks(a, b semantic.Reference) bool {
	if a.Kind != b.Kind {
		return a.Kind > b.Kind
	}
	return a.Confidence > b.Confidence
}
