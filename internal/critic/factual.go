package critic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser is a package-level Unicode case folder for performance.
// This avoids creating a new caser for each vocabulary lookup.
var foldCaser = cases.Fold()

var (
	// identifierRe matches word-boundary identifiers in source code.
	identifierRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

	// camelWordRe splits an identifier into camelCase/PascalCase sub-words.
	// Consecutive capitals ("HTTPServer") form a single sub-word.
	camelWordRe = regexp.MustCompile(`[A-Z]+[a-z0-9]*|[a-z0-9]+`)

	// backtickRe captures backtick-quoted spans in explanation text.
	backtickRe = regexp.MustCompile("`([^`]+)`")

	// camelRefRe matches camelCase tokens used as identifier references.
	camelRefRe = regexp.MustCompile(`\b[a-z][a-z0-9]*[A-Z][A-Za-z0-9]*\b`)

	// snakeRefRe matches snake_case tokens used as identifier references.
	snakeRefRe = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)+\b`)

	// accessorRe matches accessor-style identifiers whose tail names a
	// property, e.g. getLastName, setOwner, isValid.
	accessorRe = regexp.MustCompile(`^(get|set|is|has)([A-Z][A-Za-z0-9]*)$`)
)

// factualStoplist contains generic English and domain filler words that
// look like identifier references but carry no factual claim. Tokens in
// this list are never reported as suspicious.
var factualStoplist = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"this", "that", "code", "function", "method", "class", "object",
		"value", "values", "variable", "variables", "parameter", "parameters",
		"argument", "arguments", "return", "returns", "returned", "result",
		"results", "string", "integer", "boolean", "float", "double", "list",
		"array", "map", "set", "data", "database", "table", "query", "queries",
		"input", "output", "error", "errors", "exception", "exceptions",
		"null", "none", "true", "false", "void", "type", "types", "field",
		"fields", "name", "names", "call", "calls", "called", "user", "users",
		"item", "items", "index", "text", "file", "files", "line", "lines",
		"key", "keys", "loop", "loops", "condition", "title", "when", "then",
		"else", "case", "based", "each", "with", "from", "into", "using",
	} {
		factualStoplist[w] = struct{}{}
	}
}

// codeVocabulary holds the identifiers a factual reference may legally
// point at. Verbatim entries preserve case; augmented entries are folded
// to lower case and include camelCase sub-words and accessor tails.
type codeVocabulary struct {
	verbatim  map[string]struct{}
	augmented map[string]struct{}
}

// buildVocabulary extracts the code's identifier vocabulary and augments
// it: each identifier is split on camelCase boundaries into sub-words
// longer than two characters, and accessor-style names contribute their
// property tail (getLastName also admits lastName).
func buildVocabulary(code string) codeVocabulary {
	vocab := codeVocabulary{
		verbatim:  make(map[string]struct{}),
		augmented: make(map[string]struct{}),
	}

	for _, ident := range identifierRe.FindAllString(code, -1) {
		vocab.verbatim[ident] = struct{}{}
		vocab.augmented[foldCaser.String(ident)] = struct{}{}

		for _, sub := range camelWordRe.FindAllString(ident, -1) {
			if len(sub) > 2 {
				vocab.augmented[foldCaser.String(sub)] = struct{}{}
			}
		}

		if m := accessorRe.FindStringSubmatch(ident); m != nil && len(m[2]) >= 3 {
			vocab.augmented[foldCaser.String(m[2])] = struct{}{}
		}
	}
	return vocab
}

// contains reports whether a reference resolves against the vocabulary,
// either verbatim or case-insensitively against the augmented set.
func (v codeVocabulary) contains(ref string) bool {
	if _, ok := v.verbatim[ref]; ok {
		return true
	}
	_, ok := v.augmented[foldCaser.String(ref)]
	return ok
}

// nearest returns the vocabulary entry closest to the reference by edit
// distance, or "" when nothing is within two edits. It gives a concrete
// hint when an explanation misspells a real identifier.
func (v codeVocabulary) nearest(ref string) string {
	const maxDistance = 2
	best, bestDist := "", maxDistance+1
	folded := foldCaser.String(ref)
	for entry := range v.augmented {
		if d := levenshtein.ComputeDistance(folded, entry); d < bestDist {
			best, bestDist = entry, d
		}
	}
	return best
}

// extractReferences pulls candidate identifier references out of the
// explanation: backtick-quoted tokens, camelCase tokens, and snake_case
// tokens, in order of appearance.
func extractReferences(explanation string) []string {
	seen := make(map[string]struct{})
	var refs []string
	add := func(ref string) {
		ref = strings.TrimSpace(strings.TrimSuffix(ref, "()"))
		if ref == "" {
			return
		}
		if _, dup := seen[ref]; dup {
			return
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}

	for _, m := range backtickRe.FindAllStringSubmatch(explanation, -1) {
		for _, tok := range identifierRe.FindAllString(m[1], -1) {
			add(tok)
		}
	}
	for _, tok := range camelRefRe.FindAllString(explanation, -1) {
		add(tok)
	}
	for _, tok := range snakeRefRe.FindAllString(explanation, -1) {
		add(tok)
	}
	return refs
}

// maxReportedNames caps how many suspicious names one issue lists.
const maxReportedNames = 5

// checkFactual verifies that every identifier the explanation references
// exists in the code. A reference is suspicious only when it misses both
// the verbatim and augmented vocabularies, is not a stoplisted filler
// word, and is longer than three characters. On failure the single issue
// lists up to five suspicious names in alphabetical order, with a
// nearest-match hint when one is close.
func checkFactual(code, explanation string) (passed bool, issues []string) {
	vocab := buildVocabulary(code)

	var suspicious []string
	for _, ref := range extractReferences(explanation) {
		if len(ref) <= 3 {
			continue
		}
		if _, stop := factualStoplist[foldCaser.String(ref)]; stop {
			continue
		}
		if vocab.contains(ref) {
			continue
		}
		suspicious = append(suspicious, ref)
	}

	if len(suspicious) == 0 {
		return true, nil
	}

	sort.Strings(suspicious)
	if len(suspicious) > maxReportedNames {
		suspicious = suspicious[:maxReportedNames]
	}

	issue := fmt.Sprintf("explanation references identifiers not present in the code: %s",
		strings.Join(suspicious, ", "))
	if hint := vocab.nearest(suspicious[0]); hint != "" {
		issue += fmt.Sprintf(" (closest match for %q: %q)", suspicious[0], hint)
	}
	return false, []string{issue}
}
