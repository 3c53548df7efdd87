package output

import (
	"github.com/leapstack-labs/leapion/pkg/macro"
)

// NewMacroEntry converts a resolved macro into its output
// representation. file names the catalog file that declared the macro,
// empty for system macros.
func NewMacroEntry(ref macro.Ref, file string) MacroEntry {
	name, _ := ref.Name()
	entry := MacroEntry{
		Address:    ref.Address(),
		Name:       name,
		Kind:       ref.Kind().String(),
		System:     ref.Address() < macro.FirstUserMacroID,
		Signature:  ref.Signature().String(),
		Parameters: newParameterInfos(ref.Signature()),
		Analysis:   newAnalysisInfo(ref.ExpansionAnalysis()),
		SourceFile: file,
	}
	if body, ok := ref.TemplateBody(); ok {
		entry.BodyExprs = body.Len()
	}
	return entry
}

// NewListOutput bundles macro entries with their summary.
func NewListOutput(entries []MacroEntry) ListOutput {
	summary := ListSummary{
		Total:  len(entries),
		ByKind: make(map[string]int),
	}
	for _, e := range entries {
		if e.System {
			summary.System++
		} else {
			summary.User++
		}
		summary.ByKind[e.Kind]++
	}
	return ListOutput{Macros: entries, Summary: summary}
}

func newParameterInfos(sig macro.Signature) []ParameterInfo {
	infos := make([]ParameterInfo, 0, sig.Len())
	for i := 0; i < sig.Len(); i++ {
		p := sig.At(i)
		infos = append(infos, ParameterInfo{
			Name:        p.Name(),
			Encoding:    p.Encoding().String(),
			Cardinality: p.Cardinality().String(),
			Rest:        p.AllowsRest(),
		})
	}
	return infos
}

func newAnalysisInfo(a macro.ExpansionAnalysis) AnalysisInfo {
	info := AnalysisInfo{
		CouldProduceSystemValue:    a.CouldProduceSystemValue(),
		MustProduceExactlyOneValue: a.MustProduceExactlyOneValue(),
		LazilyEvaluable:            a.CanBeLazilyEvaluatedAtTopLevel(),
	}
	if s, ok := a.ExpansionSingleton(); ok {
		info.Singleton = &SingletonInfo{
			IsNull:      s.IsNull(),
			Type:        s.IonType().String(),
			Annotations: s.NumAnnotations(),
		}
	}
	return info
}
