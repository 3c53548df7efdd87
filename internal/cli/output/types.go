package output

// MacroEntry describes a single macro table entry in JSON output.
type MacroEntry struct {
	Address    int             `json:"address" yaml:"address"`
	Name       string          `json:"name,omitempty" yaml:"name,omitempty"`
	Kind       string          `json:"kind" yaml:"kind"`
	System     bool            `json:"system" yaml:"system"`
	Signature  string          `json:"signature" yaml:"signature"`
	Parameters []ParameterInfo `json:"parameters" yaml:"parameters"`
	Analysis   AnalysisInfo    `json:"analysis" yaml:"analysis"`
	BodyExprs  int             `json:"body_exprs,omitempty" yaml:"body_exprs,omitempty"`
	SourceFile string          `json:"source_file,omitempty" yaml:"source_file,omitempty"`
}

// ParameterInfo describes one signature parameter.
type ParameterInfo struct {
	Name        string `json:"name" yaml:"name"`
	Encoding    string `json:"encoding" yaml:"encoding"`
	Cardinality string `json:"cardinality" yaml:"cardinality"`
	Rest        bool   `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// AnalysisInfo describes the static expansion analysis of a macro.
type AnalysisInfo struct {
	CouldProduceSystemValue    bool           `json:"could_produce_system_value" yaml:"could_produce_system_value"`
	MustProduceExactlyOneValue bool           `json:"must_produce_exactly_one_value" yaml:"must_produce_exactly_one_value"`
	LazilyEvaluable            bool           `json:"lazily_evaluable" yaml:"lazily_evaluable"`
	Singleton                  *SingletonInfo `json:"singleton,omitempty" yaml:"singleton,omitempty"`
}

// SingletonInfo describes the statically known shape of a macro that
// always expands to exactly one value.
type SingletonInfo struct {
	IsNull      bool   `json:"is_null" yaml:"is_null"`
	Type        string `json:"type" yaml:"type"`
	Annotations int    `json:"annotations" yaml:"annotations"`
}

// ListOutput is the JSON output of the list and system commands.
type ListOutput struct {
	Macros  []MacroEntry `json:"macros" yaml:"macros"`
	Summary ListSummary  `json:"summary" yaml:"summary"`
}

// ListSummary aggregates macro counts.
type ListSummary struct {
	Total  int            `json:"total" yaml:"total"`
	System int            `json:"system" yaml:"system"`
	User   int            `json:"user" yaml:"user"`
	ByKind map[string]int `json:"by_kind" yaml:"by_kind"`
}

// CheckOutput is the JSON output of the check command.
type CheckOutput struct {
	CatalogDir string       `json:"catalog_dir" yaml:"catalog_dir"`
	Files      int          `json:"files" yaml:"files"`
	Macros     []MacroEntry `json:"macros" yaml:"macros"`
	Issues     []CheckIssue `json:"issues" yaml:"issues"`
	OK         bool         `json:"ok" yaml:"ok"`
}

// CheckIssue is a single problem found while checking a catalog.
type CheckIssue struct {
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Message string `json:"message" yaml:"message"`
}
