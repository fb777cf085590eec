// Package lang defines the per-language configuration consumed by the
// analyzers: the four query patterns (comments, functions, branching
// constructs, normalization constructs) and the seven estimation
// constants. Profiles are immutable configuration data constructed at
// startup; the supported set is fixed at build time.
package lang

import "path/filepath"

// Profile is the complete per-language configuration.
type Profile struct {
	LanguageID string

	// Query patterns executed by the syntax engine.
	CommentQuery       string
	FunctionQuery      string
	BranchQuery        string
	NormalizationQuery string // optional; empty means no normalization pass

	// Estimation constants (see the shared estimation formula).
	BaseRateNlocPerDay        float64
	ComplexityMidpoint        float64
	ComplexitySteepness       float64
	ComplexityBenefitCap      float64
	ComplexityPenaltyCap      float64
	CommentFullBenefitDensity float64
	CommentBenefitCap         float64
}

// extensionTable maps file extensions to language ids. Detection is a
// static table applied before any engine dispatch; unsupported
// extensions are excluded from all language-specific processing.
var extensionTable = map[string]string{
	".cs":   "csharp",
	".java": "java",
	".rs":   "rust",
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".cpp":  "cpp",
	".cc":   "cpp",
	".cxx":  "cpp",
	".c":    "cpp",
	".h":    "cpp",
	".hpp":  "cpp",
	".php":  "php",
	".zig":  "zig",
}

// Detect returns the language id for a file path, or "" when the
// extension maps to no profile.
func Detect(path string) string {
	return extensionTable[filepath.Ext(path)]
}

// Get returns the profile for a language id, or nil when unsupported.
func Get(languageID string) *Profile {
	return profiles[languageID]
}

// All returns the full profile table keyed by language id.
func All() map[string]*Profile {
	return profiles
}

var profiles = map[string]*Profile{
	"csharp": {
		LanguageID:   "csharp",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(method_declaration name: (identifier) @function.name) @function
			(constructor_declaration name: (identifier) @function.name) @function
			(local_function_statement name: (identifier) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (foreach_statement) (while_statement)
			 (do_statement) (switch_statement) (switch_expression)
			 (conditional_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(using_directive) @normalize
			(method_declaration) @normalize.signature
			(constructor_declaration) @normalize.signature
		`,
		BaseRateNlocPerDay:        350,
		ComplexityMidpoint:        30,
		ComplexitySteepness:       18,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 25,
		CommentBenefitCap:         0.2,
	},
	"java": {
		LanguageID:   "java",
		CommentQuery: `[(line_comment) (block_comment)] @comment`,
		FunctionQuery: `
			(method_declaration name: (identifier) @function.name) @function
			(constructor_declaration name: (identifier) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (enhanced_for_statement) (while_statement)
			 (do_statement) (switch_expression) (ternary_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(import_declaration) @normalize
			(method_declaration) @normalize.signature
			(constructor_declaration) @normalize.signature
		`,
		BaseRateNlocPerDay:        350,
		ComplexityMidpoint:        30,
		ComplexitySteepness:       18,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 25,
		CommentBenefitCap:         0.2,
	},
	"rust": {
		LanguageID:    "rust",
		CommentQuery:  `[(line_comment) (block_comment)] @comment`,
		FunctionQuery: `(function_item name: (identifier) @function.name) @function`,
		BranchQuery: `
			[(if_expression) (match_expression) (while_expression)
			 (for_expression) (loop_expression)] @branch
		`,
		NormalizationQuery: `
			(use_declaration) @normalize
			(attribute_item) @normalize
			(function_item) @normalize.signature
		`,
		BaseRateNlocPerDay:        300,
		ComplexityMidpoint:        28,
		ComplexitySteepness:       16,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.55,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.2,
	},
	"go": {
		LanguageID:   "go",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(function_declaration name: (identifier) @function.name) @function
			(method_declaration name: (field_identifier) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (expression_switch_statement)
			 (type_switch_statement) (select_statement)] @branch
		`,
		NormalizationQuery: `
			(import_declaration) @normalize
			(function_declaration) @normalize.signature
			(method_declaration) @normalize.signature
		`,
		BaseRateNlocPerDay:        400,
		ComplexityMidpoint:        25,
		ComplexitySteepness:       15,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.2,
	},
	"python": {
		LanguageID:    "python",
		CommentQuery:  `(comment) @comment`,
		FunctionQuery: `(function_definition name: (identifier) @function.name) @function`,
		BranchQuery: `
			[(if_statement) (for_statement) (while_statement) (try_statement)
			 (conditional_expression) (match_statement)] @branch
		`,
		NormalizationQuery: `
			[(import_statement) (import_from_statement)] @normalize
			(function_definition) @normalize.signature
		`,
		BaseRateNlocPerDay:        450,
		ComplexityMidpoint:        25,
		ComplexitySteepness:       15,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.45,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.25,
	},
	"javascript": {
		LanguageID:   "javascript",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(method_definition name: (property_identifier) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (for_in_statement) (while_statement)
			 (do_statement) (switch_statement) (ternary_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(import_statement) @normalize
			(function_declaration) @normalize.signature
			(method_definition) @normalize.signature
		`,
		BaseRateNlocPerDay:        400,
		ComplexityMidpoint:        28,
		ComplexitySteepness:       16,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.2,
	},
	"typescript": {
		LanguageID:   "typescript",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(function_declaration name: (identifier) @function.name) @function
			(generator_function_declaration name: (identifier) @function.name) @function
			(method_definition name: (property_identifier) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (for_in_statement) (while_statement)
			 (do_statement) (switch_statement) (ternary_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(import_statement) @normalize
			(function_declaration) @normalize.signature
			(method_definition) @normalize.signature
		`,
		BaseRateNlocPerDay:        380,
		ComplexityMidpoint:        28,
		ComplexitySteepness:       16,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 22,
		CommentBenefitCap:         0.2,
	},
	"cpp": {
		LanguageID:   "cpp",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(function_definition
				declarator: (function_declarator
					declarator: (identifier) @function.name)) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (for_range_loop) (while_statement)
			 (do_statement) (switch_statement) (conditional_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(preproc_include) @normalize
			(function_definition) @normalize.signature
		`,
		BaseRateNlocPerDay:        250,
		ComplexityMidpoint:        32,
		ComplexitySteepness:       20,
		ComplexityBenefitCap:      0.15,
		ComplexityPenaltyCap:      0.6,
		CommentFullBenefitDensity: 25,
		CommentBenefitCap:         0.15,
	},
	"php": {
		LanguageID:   "php",
		CommentQuery: `(comment) @comment`,
		FunctionQuery: `
			(function_definition name: (name) @function.name) @function
			(method_declaration name: (name) @function.name) @function
		`,
		BranchQuery: `
			[(if_statement) (for_statement) (foreach_statement) (while_statement)
			 (do_statement) (switch_statement) (conditional_expression) (catch_clause)] @branch
		`,
		NormalizationQuery: `
			(namespace_use_declaration) @normalize
			(function_definition) @normalize.signature
			(method_declaration) @normalize.signature
		`,
		BaseRateNlocPerDay:        400,
		ComplexityMidpoint:        28,
		ComplexitySteepness:       16,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.5,
		CommentFullBenefitDensity: 20,
		CommentBenefitCap:         0.2,
	},
	"zig": {
		LanguageID:    "zig",
		CommentQuery:  `(comment) @comment`,
		FunctionQuery: `(function_declaration (identifier) @function.name) @function`,
		BranchQuery: `
			[(if_statement) (while_statement) (for_statement) (switch_expression)] @branch
		`,
		// No normalization query; Zig files are measured on raw line
		// accounting only.
		NormalizationQuery:        "",
		BaseRateNlocPerDay:        300,
		ComplexityMidpoint:        28,
		ComplexitySteepness:       16,
		ComplexityBenefitCap:      0.2,
		ComplexityPenaltyCap:      0.55,
		CommentFullBenefitDensity: 18,
		CommentBenefitCap:         0.15,
	},
}
