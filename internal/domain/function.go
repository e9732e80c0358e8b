package domain

// FunctionRecord is the parsed representation of a single function or
// method, extracted by a language-specific source parser. It carries the
// raw code plus the static metrics the writer and critic consume.
type FunctionRecord struct {
	// Name is the function's simple name.
	Name string `json:"name"`

	// FilePath locates the source file the function was parsed from.
	FilePath string `json:"file_path"`

	// StartLine and EndLine are 1-indexed source line numbers.
	StartLine int `json:"start_line"`
	EndLine   int `json:"end_line"`

	// Code is the exact source text of the function.
	Code string `json:"code"`

	// Language is the source language tag ("java", "python", ...).
	Language string `json:"language"`

	// Complexity is the McCabe cyclomatic complexity (1 = simplest).
	Complexity int `json:"complexity"`

	// LineCount is the number of lines spanned by the function.
	LineCount int `json:"line_count"`

	// Calls lists names of functions invoked in the body, in source order.
	Calls []string `json:"calls,omitempty"`

	// ClassName is the enclosing class, if any.
	ClassName string `json:"class_name,omitempty"`

	// ParamCount is the number of declared parameters.
	ParamCount int `json:"param_count"`

	// ReturnCount is the number of return statements in the body.
	ReturnCount int `json:"return_count"`

	// HasLoops reports whether the body contains any loop construct.
	HasLoops bool `json:"has_loops"`

	// HasTryCatch reports whether the body contains exception handling.
	HasTryCatch bool `json:"has_try_catch"`
}

// QualifiedName returns ClassName.Name when the function is a method,
// or the bare name otherwise.
func (f FunctionRecord) QualifiedName() string {
	if f.ClassName != "" {
		return f.ClassName + "." + f.Name
	}
	return f.Name
}

// Facts converts the record's static metrics into the StaticFacts shape
// the writer consumes.
func (f FunctionRecord) Facts() StaticFacts {
	return StaticFacts{
		Name:       f.Name,
		Complexity: f.Complexity,
		LineCount:  f.LineCount,
		Calls:      append([]string(nil), f.Calls...),
	}
}
