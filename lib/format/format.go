/*package format handles the two miniature formatting languages used in
Lethe/DEM parameter files: sequence formats, which list steps, and file
formats, which name output files. E.g.:

   OutputSteps = 0..100 + 500 - 63
   OutputFormat = out/particles.{%06d,step}.{%d,rank}.txt

Sequence formats are a generic way to specify non-contiguous sequences of
natural numbers. They consist of a series of tokens separated by "+" or "-".
Each token can be either a number or two numbers separated by "..". E.g.:

  100
  0..100
  0..10 + 100
  0..100 - 63 - 10..20

Tokens after a "+" are added to the sequence and tokens after a "-" are
removed from it. Adding a number twice or removing one which is not there is
an error. A leading "+" may be dropped.

File formats are fixed text mixed with variables written as {verb,name}.
"verb" is a printf() verb (e.g. %03d) and "name" is the variable printed
with it. The names a file format may use depend on where it appears.

All spaces around "-", "+" and "," symbols are ignored.
*/
package format

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Any expanded sequence with more than BigNumber elements is assumed to
	// be a bug.
	BigNumber = 1 << 20
)

// ExpandSequenceFormat expands a sequence format string into a sorted
// sequence of integers.
func ExpandSequenceFormat(format string) ([]int, error) {
	tok, err := tokeniseSequenceFormat(format)
	if err != nil {
		return nil, err
	}
	adds, subs, err := addsSubsSequenceFormat(tok)
	if err != nil {
		return nil, err
	}

	m := map[int]bool{}
	for _, t := range adds {
		for _, n := range parseSequenceFormatToken(t) {
			if m[n] {
				return nil, fmt.Errorf("The number %d is added more than once.", n)
			}
			m[n] = true
		}
		if len(m) > BigNumber {
			return nil, fmt.Errorf("The sequence '%s' has more than %d "+
				"elements, which is almost certainly a bug.", format, BigNumber)
		}
	}

	for _, t := range subs {
		for _, n := range parseSequenceFormatToken(t) {
			if !m[n] {
				return nil, fmt.Errorf("The number %d is removed more times "+
					"than it was added.", n)
			}
			delete(m, n)
		}
	}

	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

// tokeniseSequenceFormat splits a sequence format string into numbers,
// ranges and operators.
func tokeniseSequenceFormat(format string) ([]string, error) {
	clean := strings.ReplaceAll(format, "+", " + ")
	clean = strings.ReplaceAll(clean, "-", " - ")

	tok := strings.Fields(clean)
	if len(tok) == 0 {
		return nil, fmt.Errorf("The format string is empty.")
	}
	return tok, nil
}

// addsSubsSequenceFormat sorts tokens into those which are added to the
// sequence and those which are removed from it.
func addsSubsSequenceFormat(tok []string) (adds, subs []string, err error) {
	if len(tok) == 0 {
		return nil, nil, fmt.Errorf("The format string is empty.")
	}

	adds, subs = []string{}, []string{}
	if tok[0] != "+" && tok[0] != "-" {
		tok = append([]string{"+"}, tok...)
	}

	for i := 0; i < len(tok); i += 2 {
		op := tok[i]
		if op != "-" && op != "+" {
			return nil, nil, fmt.Errorf(
				"Element '%s' should be a '-' or '+', but isn't.", op,
			)
		} else if i+1 >= len(tok) {
			return nil, nil, fmt.Errorf(
				"The format string ends in a trailing '%s'.", op,
			)
		}

		if err := isSequenceFormatToken(tok[i+1]); err != nil {
			return nil, nil, fmt.Errorf(
				"Element '%s' cannot be parsed because %s", tok[i+1], err,
			)
		}

		if op == "+" {
			adds = append(adds, tok[i+1])
		} else {
			subs = append(subs, tok[i+1])
		}
	}

	return adds, subs, nil
}

// isSequenceFormatToken returns nil if tok is a valid number or range and an
// error describing the problem otherwise. The error message is meant to be
// printed after a "because".
func isSequenceFormatToken(tok string) error {
	if len(tok) == 0 {
		return fmt.Errorf("it is empty.")
	}

	bounds := strings.Split(tok, "..")
	if len(bounds) > 2 {
		return fmt.Errorf("it has more than one '..'.")
	}

	n := make([]int, len(bounds))
	for i := range bounds {
		var err error
		if n[i], err = strconv.Atoi(bounds[i]); err != nil {
			return fmt.Errorf("'%s' is not an integer.", bounds[i])
		}
	}

	if len(n) == 2 && n[1] < n[0] {
		return fmt.Errorf("lower bound %d is larger than upper bound %d.",
			n[0], n[1])
	}
	return nil
}

// parseSequenceFormatToken expands a token which has already passed
// isSequenceFormatToken.
func parseSequenceFormatToken(tok string) []int {
	bounds := strings.Split(tok, "..")
	start, _ := strconv.Atoi(bounds[0])
	end := start
	if len(bounds) == 2 {
		end, _ = strconv.Atoi(bounds[1])
	}

	out := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	return out
}

// File is a parsed file format string.
type File struct {
	// Separators holds the fixed text around the variables. It has one more
	// element than Verbs.
	Separators []string
	Verbs      []string
	Names      []string
}

// ParseFileFormat parses a file format string. names lists the variable
// names the format may use.
func ParseFileFormat(format string, names ...string) (*File, error) {
	starts, ends, err := startsEndsFormatString(format)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{}
	for _, name := range names {
		allowed[name] = true
	}

	f := &File{}
	sepStart := 0
	for i := range starts {
		f.Separators = append(f.Separators, format[sepStart:starts[i]])
		sepStart = ends[i]

		v := strings.Split(format[starts[i]+1:ends[i]-1], ",")
		if len(v) != 2 {
			return nil, fmt.Errorf("The variable '%s' in file format '%s' "+
				"should be a printf verb and a name separated by a comma.",
				format[starts[i]:ends[i]], format)
		}
		verb, name := strings.TrimSpace(v[0]), strings.TrimSpace(v[1])

		if !strings.HasPrefix(verb, "%") || !strings.HasSuffix(verb, "d") {
			return nil, fmt.Errorf("The verb '%s' in file format '%s' is not "+
				"an integer printf verb, like %%d or %%05d.", verb, format)
		} else if !allowed[name] {
			return nil, fmt.Errorf("The variable name '%s' in file format "+
				"'%s' is not one of %s.", name, format, strings.Join(names, ", "))
		}

		f.Verbs = append(f.Verbs, verb)
		f.Names = append(f.Names, name)
	}
	f.Separators = append(f.Separators, format[sepStart:])

	return f, nil
}

// Expand prints the file name for the given variable values.
func (f *File) Expand(values map[string]int) string {
	sb := &strings.Builder{}
	for i := range f.Verbs {
		sb.WriteString(f.Separators[i])
		fmt.Fprintf(sb, f.Verbs[i], values[f.Names[i]])
	}
	sb.WriteString(f.Separators[len(f.Separators)-1])
	return sb.String()
}

// startsEndsFormatString returns the indices of the beginning and end of
// each variable in a file format.
func startsEndsFormatString(format string) (starts, ends []int, err error) {
	starts, ends = []int{}, []int{}
	nested := 0
	ending := "Make sure variables in file formats are enclosed in " +
		"matching { ... } pairs."

	for i := range format {
		switch format[i] {
		case '{':
			nested++
			starts = append(starts, i)
		case '}':
			nested--
			ends = append(ends, i+1)
		}

		if nested > 1 {
			return nil, nil, fmt.Errorf("The file format '%s' has nested "+
				"'{' characters at indices %d and %d. %s", format,
				starts[len(starts)-2], starts[len(starts)-1], ending)
		} else if nested < 0 {
			return nil, nil, fmt.Errorf("The file format '%s' has a '}' "+
				"that doesn't come after a '{' at index %d. %s",
				format, i, ending)
		}
	}

	if nested != 0 {
		return nil, nil, fmt.Errorf("The file format '%s' has a '{' "+
			"without a matching '}' at index %d. %s",
			format, starts[len(starts)-1], ending)
	}

	return starts, ends, nil
}
