package parser

import (
	"go/ast"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultMarker is the doc comment line that marks a type for expansion.
const DefaultMarker = "@bigarray"

// Annotation holds a parsed marker line
type Annotation struct {
	Register bool // emit an init function registering the generated hooks
}

// ParseAnnotation parses the marker annotation from a cleaned comment line
//
// Expected format:
//
//	// @bigarray
//	// @bigarray register=false
//
// Params are space-separated key=value pairs.
func ParseAnnotation(marker, comment string) (*Annotation, error) {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(marker) + `(?:\s+(.*))?$`)
	matches := re.FindStringSubmatch(comment)
	if matches == nil {
		return nil, errors.Newf("no %s annotation found", marker)
	}

	anno := &Annotation{Register: true}
	params := strings.TrimSpace(matches[1])
	if params == "" {
		return anno, nil
	}

	for _, param := range strings.Fields(params) {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			return nil, errors.Wrapf(ErrInvalidAnnotation, "parameter %q needs a value", param)
		}

		switch key {
		case "register":
			register, err := strconv.ParseBool(value)
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidAnnotation, "invalid register value: %s", value)
			}
			anno.Register = register

		default:
			return nil, errors.Wrapf(ErrInvalidAnnotation, "unknown parameter: %s", key)
		}
	}

	return anno, nil
}

// FindAnnotation searches a doc comment for the marker line.
// Returns the annotation and the marker comment, or nils when the doc does
// not carry the marker. A marker line with bad parameters is an error.
func FindAnnotation(marker string, doc *ast.CommentGroup) (*Annotation, *ast.Comment, error) {
	if doc == nil {
		return nil, nil, nil
	}
	for _, c := range doc.List {
		line := CleanComment(c.Text)
		if line != marker && !strings.HasPrefix(line, marker+" ") && !strings.HasPrefix(line, marker+"\t") {
			continue
		}
		anno, err := ParseAnnotation(marker, line)
		if err != nil {
			return nil, nil, err
		}
		return anno, c, nil
	}
	return nil, nil, nil
}

var deriveRe = regexp.MustCompile(`^@derive\(([^)]*)\)`)

// ParseDerive returns the markers listed in a "@derive(...)" line, or false
// if the line is not a capability declaration.
func ParseDerive(line string) ([]string, bool) {
	matches := deriveRe.FindStringSubmatch(CleanComment(line))
	if matches == nil {
		return nil, false
	}
	var markers []string
	for _, m := range strings.Split(matches[1], ",") {
		if m = strings.TrimSpace(m); m != "" {
			markers = append(markers, m)
		}
	}
	return markers, true
}

// ScanCapabilities reports whether any capability declaration among lines
// names the Serialize or Deserialize marker. Markers are matched on their
// last dot-separated segment, so "Serialize" and "seq.Serialize" are the same.
func ScanCapabilities(lines []string) (serialize, deserialize bool) {
	for _, line := range lines {
		markers, ok := ParseDerive(line)
		if !ok {
			continue
		}
		for _, m := range markers {
			switch m[strings.LastIndexByte(m, '.')+1:] {
			case "Serialize":
				serialize = true
			case "Deserialize":
				deserialize = true
			}
		}
	}
	return serialize, deserialize
}

// CleanComment removes comment markers from a line
// "// @bigarray" → "@bigarray"
// "/* @bigarray */" → "@bigarray"
func CleanComment(line string) string {
	line = strings.TrimSpace(line)

	// Remove // prefix
	if strings.HasPrefix(line, "//") {
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimSpace(line)
		return line
	}

	// Remove /* */ wrapper
	if strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") {
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		return line
	}

	return line
}
