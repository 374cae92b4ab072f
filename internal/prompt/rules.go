package prompt

import "github.com/pricofy/omnicode/internal/languages"

// RuleBlock is a supplementary instruction block merged into the prompt for
// one target language. The rules are text for the model; nothing here executes them.
type RuleBlock struct {
	Title string
	Lines []string
}

// Fixed Lipi Script rule fragments.
const (
	LipiArchitectureRule = "CORE ARCHITECTURE: Lipi is a DSL on Golang. Use JavaScript-like syntax with MANDATORY curly braces {} for all scoping."
	LipiLifetimeRule     = "PERSISTENCE: Replace 'var' with 'static' (script lifecycle) and 'varip' with 'intra' (bar lifecycle)."
	LipiLoopRule         = "LOOPS: 'for' loops are FORBIDDEN. Convert all 'for' loops to 'while' loops with manual incrementors (e.g., i := i + 1)."
	LipiTypingRule       = "TYPING: Strict typing is MANDATORY. Declare types for all function parameters (int, float, bool, color, line, label, box, string)."
	LipiLibraryRule      = "LIBRARIES: Technical Analysis 'ta.*' -> 'talib.*' (e.g., talib.sma, talib.rsi, talib.crossover). Math 'math.*' remains similar but check parity. Inputs 'input()' -> 'input.int()', 'input.float()', 'input.bool()', 'input.source()', 'input.color()'. Time: use the 'interval.*' library for timeframe variables."
	LipiColorRule        = "COLORS: color.new(color, alpha) -> alpha must be 0.0 to 1.0 (decimal), not 0-100."
	LipiPlotRule         = "PLOTTING: 'plot.style_histogram' -> 'plotStyle.histogram'."
	LipiArrayRule        = "ARRAYS: Lipi uses fixed-size buffers. 'array.new_float()' -> 'static float arr[SIZE]'."
	LipiAttributionRule  = "ATTRIBUTION: Mandatory header for Pine ports:\n// LipiScript conversion of [Name]\n// Original Pine Script by [Author]\n// Source: [URL]"
)

// Fixed plain-English rule fragments.
const (
	EnglishObjectiveRule = "Objective: 99% accuracy in logical mapping."
	EnglishStyleRule     = "Style: Simple, direct commands only."
	EnglishTerseRule     = "Constraint: NO explanations, NO \"This code does...\", NO introductions."
	EnglishMappingRule   = "Mapping: One line of code logic = One line of English command."
	EnglishAccuracyRule  = "Accuracy: Ensure variables and conditional results are reflected precisely."
)

// targetRules is keyed by target language id.
var targetRules = map[string]RuleBlock{
	languages.LipiScript: {
		Title: "LIPI SCRIPT CONVERSION PROTOCOL (STRICT ENFORCEMENT)",
		Lines: []string{
			LipiArchitectureRule,
			LipiLifetimeRule,
			LipiLoopRule,
			LipiTypingRule,
			LipiLibraryRule,
			LipiColorRule,
			LipiPlotRule,
			LipiArrayRule,
			LipiAttributionRule,
		},
	},
	languages.English: {
		Title: "PLAIN ENGLISH LOGIC PROTOCOL",
		Lines: []string{
			EnglishObjectiveRule,
			EnglishStyleRule,
			EnglishTerseRule,
			EnglishMappingRule,
			EnglishAccuracyRule,
		},
	},
}

// RulesFor returns the supplementary block for target, if any.
func RulesFor(target string) (RuleBlock, bool) {
	b, ok := targetRules[target]
	return b, ok
}
