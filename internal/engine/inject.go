package engine

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// InsertionPoint is one candidate location for a defect. A line may produce
// several points, and a point may admit several categories; the category is
// chosen at spawn time, not at scan time.
type InsertionPoint struct {
	Range        Range
	OriginalText string
	Allowed      []Category
}

// Language traits gate the per-line rules: terminator rules only apply to
// terminator-requiring languages, whitespace rules only to
// indentation-significant ones.
var terminatorLangs = map[string]bool{
	"javascript": true,
	"typescript": true,
	"csharp":     true,
	"c":          true,
	"java":       true,
}

var indentationLangs = map[string]bool{
	"python": true,
}

var typoKeywordsByLang = map[string][]string{
	"javascript": {"return", "function", "const", "let", "var"},
	"typescript": {"return", "function", "const", "let", "var", "interface"},
	"python":     {"return", "def", "if", "else", "elif", "for", "while", "class"},
	"csharp":     {"return", "public", "static", "class", "void", "using", "while", "new"},
	"c":          {"return", "static", "struct", "void", "while", "for", "const", "int"},
}

var misspellings = map[string]string{
	"return":    "retrun",
	"function":  "functoin",
	"const":     "cosnt",
	"let":       "elt",
	"var":       "avr",
	"interface": "intreface",
	"def":       "dfe",
	"class":     "calss",
	"elif":      "eilf",
	"else":      "esle",
	"for":       "fro",
	"while":     "whlie",
	"public":    "pubilc",
	"static":    "sttaic",
	"void":      "viod",
	"using":     "usnig",
	"struct":    "strcut",
	"new":       "enw",
	"int":       "itn",
	"if":        "fi",
}

// misspellingKeys holds the map keys longest-first (ties alphabetical) so
// substring fallback picks the same keyword every time.
var misspellingKeys = func() []string {
	keys := make([]string, 0, len(misspellings))
	for k := range misspellings {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var (
	pyColonRe  = regexp.MustCompile(`\b(def|if|else|elif|for|while|class)\b[^:]*:`)
	indentRe   = regexp.MustCompile(`^( +)`)
	quotedRe   = regexp.MustCompile(`["']([^"']*)["']`)
	parenRe    = regexp.MustCompile(`[(){}]`)
	operatorRe = regexp.MustCompile(`===|==|=|\+|-`)
	wordRe     = regexp.MustCompile(`\b\w+\b`)
)

// FindInsertionPoints scans a language-tagged source text and emits every
// candidate defect location. Rules are pure functions of line content.
func FindInsertionPoints(content, language string) []InsertionPoint {
	var points []InsertionPoint
	lines := strings.Split(content, "\n")

	push := func(line, startCol, endCol int, text string, cats ...Category) {
		points = append(points, InsertionPoint{
			Range: Range{
				StartLine:   line,
				StartColumn: startCol,
				EndLine:     line,
				EndColumn:   endCol,
			},
			OriginalText: text,
			Allowed:      cats,
		})
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if terminatorLangs[language] && strings.HasSuffix(strings.TrimRight(line, " \t"), ";") {
			col := strings.LastIndex(line, ";")
			push(i, col, col+1, ";", CatMissingSemicolon)
		}

		if indentationLangs[language] {
			if loc := pyColonRe.FindStringIndex(line); loc != nil {
				col := loc[1] - 1
				push(i, col, col+1, ":", CatMissingColon)
			}
			if m := indentRe.FindString(line); len(m) >= 2 {
				push(i, 0, len(m), m, CatWrongIndentation)
			}
		}

		if m := quotedRe.FindStringIndex(line); m != nil {
			push(i, m[0], m[1], line[m[0]:m[1]], CatWrongQuotes)
		}

		keywords, ok := typoKeywordsByLang[language]
		if !ok {
			keywords = typoKeywordsByLang["javascript"]
		}
		if kw, col := firstKeyword(line, keywords); col >= 0 {
			push(i, col, col+len(kw), kw, CatTypo)
		}

		if m := parenRe.FindStringIndex(line); m != nil {
			push(i, m[0], m[1], line[m[0]:m[1]], CatWrongBracket)
		}

		if m := operatorRe.FindStringIndex(line); m != nil {
			push(i, m[0], m[1], line[m[0]:m[1]], CatWrongOperator)
		}

		if m := wordRe.FindStringIndex(line); m != nil {
			push(i, m[0], m[1], line[m[0]:m[1]], CatExtraChar)
		}
	}

	return points
}

func firstKeyword(line string, keywords []string) (string, int) {
	best := -1
	var found string
	for _, kw := range keywords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if loc := re.FindStringIndex(line); loc != nil && (best < 0 || loc[0] < best) {
			best = loc[0]
			found = kw
		}
	}
	return found, best
}

var operatorSwaps = map[string]string{
	"===": "==",
	"==":  "=",
	"=":   "==",
	"+":   "-",
	"-":   "+",
}

// transform produces the corrupted replacement for a category, or ok=false
// when the category's precondition does not hold at this text.
func transform(cat Category, original string) (string, bool) {
	switch cat {
	case CatMissingSemicolon:
		if !strings.Contains(original, ";") {
			return "", false
		}
		return strings.Replace(original, ";", "", 1), true

	case CatMissingColon:
		if !strings.Contains(original, ":") {
			return "", false
		}
		return strings.Replace(original, ":", "", 1), true

	case CatWrongQuotes:
		swapped := strings.Map(func(r rune) rune {
			switch r {
			case '"':
				return '\''
			case '\'':
				return '"'
			}
			return r
		}, original)
		return swapped, swapped != original

	case CatTypo:
		lower := strings.ToLower(original)
		if typo, ok := misspellings[lower]; ok {
			return typo, true
		}
		// Longest keyword first so the replacement is deterministic.
		for _, correct := range misspellingKeys {
			if idx := strings.Index(lower, correct); idx >= 0 {
				return original[:idx] + misspellings[correct] + original[idx+len(correct):], true
			}
		}
		if len(original) >= 4 {
			b := []byte(original)
			mid := len(b) / 2
			b[mid-1], b[mid] = b[mid], b[mid-1]
			return string(b), true
		}
		return "", false

	case CatWrongBracket:
		swapped := strings.Map(func(r rune) rune {
			switch r {
			case '(':
				return ')'
			case ')':
				return '('
			case '{':
				return '}'
			case '}':
				return '{'
			}
			return r
		}, original)
		return swapped, swapped != original

	case CatExtraChar:
		return original + "x", true

	case CatWrongOperator:
		repl, ok := operatorSwaps[original]
		return repl, ok

	case CatWrongIndentation:
		switch {
		case len(original) >= 2:
			return original[:len(original)-2], true
		case len(original) >= 1:
			return "", true
		}
		return "", false
	}
	return "", false
}

// ApplyDefect performs a pure substring replacement at range with a
// category-specific corruption of originalText. It returns the input
// unchanged when the precondition does not hold; callers treat a no-op as
// "pick a different point". Every transform is confined to a single line,
// so the line count never changes.
func ApplyDefect(cat Category, content string, rng Range, originalText string) string {
	repl, ok := transform(cat, originalText)
	if !ok {
		return content
	}
	return replaceInRange(content, rng, repl)
}

func replaceInRange(content string, rng Range, repl string) string {
	if rng.StartLine != rng.EndLine {
		return content
	}
	lines := strings.Split(content, "\n")
	if rng.StartLine < 0 || rng.StartLine >= len(lines) {
		return content
	}
	line := lines[rng.StartLine]
	start, end := rng.StartColumn, rng.EndColumn
	if start < 0 || end > len(line) || start > end {
		return content
	}
	lines[rng.StartLine] = line[:start] + repl + line[end:]
	return strings.Join(lines, "\n")
}

// SpawnDefect injects one defect into a random file: pick a uniformly random
// eligible point (lines already hosting a defect are excluded, which is what
// keeps recomposition order-independent), a uniformly random category from
// its allowed set, and record both the replaced substring and the file
// snapshot taken just before the mutation. A transform whose precondition
// fails at the chosen text is not a failed spawn; the remaining candidates
// are tried before giving up.
func SpawnDefect(s *State, rnd *rand.Rand) (*CodeError, bool) {
	if s.Phase != PhasePlaying || len(s.Files) == 0 {
		return nil, false
	}
	file := &s.Files[rnd.Intn(len(s.Files))]

	occupied := make(map[int]bool)
	for _, e := range s.Errors {
		if e.File == file.Name {
			occupied[e.Range.StartLine] = true
		}
	}
	var eligible []InsertionPoint
	for _, p := range FindInsertionPoints(file.Content, file.Language) {
		if !occupied[p.Range.StartLine] {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, false
	}

	rnd.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
	for _, point := range eligible {
		cats := point.Allowed
		rnd.Shuffle(len(cats), func(i, j int) { cats[i], cats[j] = cats[j], cats[i] })
		for _, cat := range cats {
			mutated := ApplyDefect(cat, file.Content, point.Range, point.OriginalText)
			if mutated == file.Content {
				// Precondition failed at this text; try the next candidate.
				continue
			}
			s.NextSeq++
			err := CodeError{
				ID:           "err_" + uuid.NewString(),
				File:         file.Name,
				Range:        point.Range,
				Type:         cat,
				OriginalText: point.OriginalText,
				Snapshot:     file.Content,
				Seq:          s.NextSeq,
			}
			file.Content = mutated
			s.Errors = append(s.Errors, err)
			return &s.Errors[len(s.Errors)-1], true
		}
	}
	return nil, false
}

// RestoreFile removes a corrected defect's mutation from its file. Transforms
// are single-line and active defects never share a line, so putting the
// defect's own line back from its pre-injection snapshot is exact. The same
// line is also scrubbed out of the snapshots of every still-active defect
// injected later in that file: those snapshots embed the corrected mutation,
// and left alone they would resurrect it when their own defect is corrected.
func RestoreFile(s *State, corrected CodeError) {
	file := s.FindFile(corrected.File)
	if file == nil {
		return
	}
	line := corrected.Range.StartLine
	original, ok := lineAt(corrected.Snapshot, line)
	if !ok {
		return
	}
	file.Content = setLine(file.Content, line, original)
	for i := range s.Errors {
		e := &s.Errors[i]
		if e.File == corrected.File && e.Seq > corrected.Seq {
			e.Snapshot = setLine(e.Snapshot, line, original)
		}
	}
}

func lineAt(content string, idx int) (string, bool) {
	lines := strings.Split(content, "\n")
	if idx < 0 || idx >= len(lines) {
		return "", false
	}
	return lines[idx], true
}

func setLine(content string, idx int, line string) string {
	lines := strings.Split(content, "\n")
	if idx < 0 || idx >= len(lines) {
		return content
	}
	lines[idx] = line
	return strings.Join(lines, "\n")
}
