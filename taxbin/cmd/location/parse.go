// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package location

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is returned for malformed location strings.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid location %q: %s", e.Input, e.Msg)
}

// Parse parses location strings like "12..345", "join(1..10,20..30)",
// "complement(join(...))" or "order(...)". Partial markers '<' and '>'
// are dropped. An empty string gives an empty location.
func Parse(s string) (Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}, nil
	}
	loc, err := parse(s)
	if err != nil {
		if e, ok := err.(*ParseError); ok {
			e.Input = s
			return Location{}, e
		}
		return Location{}, &ParseError{Input: s, Msg: err.Error()}
	}
	return loc, nil
}

// MustParse is for tests and literals.
func MustParse(s string) Location {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

func parse(s string) (Location, error) {
	switch {
	case strings.HasPrefix(s, "complement("):
		inner, err := unwrap(s, "complement(")
		if err != nil {
			return Location{}, err
		}
		loc, err := parse(inner)
		if err != nil {
			return Location{}, err
		}
		loc.Complement = !loc.Complement
		return loc, nil
	case strings.HasPrefix(s, "join("):
		inner, err := unwrap(s, "join(")
		if err != nil {
			return Location{}, err
		}
		return parseList(inner)
	case strings.HasPrefix(s, "order("):
		inner, err := unwrap(s, "order(")
		if err != nil {
			return Location{}, err
		}
		return parseList(inner)
	case strings.ContainsRune(s, ','):
		return parseList(s)
	}

	iv, err := parseInterval(s)
	if err != nil {
		return Location{}, err
	}
	return Location{Parts: []Interval{iv}}, nil
}

func unwrap(s, prefix string) (string, error) {
	if !strings.HasSuffix(s, ")") {
		return "", &ParseError{Msg: "unbalanced parentheses"}
	}
	inner := s[len(prefix) : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return "", &ParseError{Msg: "empty " + strings.TrimSuffix(prefix, "(")}
	}
	return inner, nil
}

// parseList splits on commas at the top level of parentheses.
func parseList(s string) (Location, error) {
	var loc Location
	var depth, begin int
	var complements, items int
	add := func(item string) error {
		item = strings.TrimSpace(item)
		if item == "" {
			return &ParseError{Msg: "empty item in list"}
		}
		sub, err := parse(item)
		if err != nil {
			return err
		}
		items++
		if sub.Complement {
			complements++
		}
		loc.Parts = append(loc.Parts, sub.Parts...)
		return nil
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return Location{}, &ParseError{Msg: "unbalanced parentheses"}
			}
		case ',':
			if depth == 0 {
				if err := add(s[begin:i]); err != nil {
					return Location{}, err
				}
				begin = i + 1
			}
		}
	}
	if depth != 0 {
		return Location{}, &ParseError{Msg: "unbalanced parentheses"}
	}
	if err := add(s[begin:]); err != nil {
		return Location{}, err
	}
	// join(complement(a),complement(b)) is a complemented feature
	loc.Complement = items > 0 && complements == items
	return loc, nil
}

func parseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, ":^()") {
		return Interval{}, &ParseError{Msg: fmt.Sprintf("unsupported interval: %s", s)}
	}
	var a, b string
	if i := strings.Index(s, ".."); i >= 0 {
		a, b = s[:i], s[i+2:]
	} else {
		a, b = s, s
	}
	start, err := parseCoord(a)
	if err != nil {
		return Interval{}, err
	}
	end, err := parseCoord(b)
	if err != nil {
		return Interval{}, err
	}
	if start > end {
		return Interval{}, &ParseError{Msg: fmt.Sprintf("start > end: %d > %d", start, end)}
	}
	return Interval{Start: start, End: end}, nil
}

func parseCoord(s string) (int, error) {
	s = strings.TrimLeft(strings.TrimSpace(s), "<>")
	s = strings.TrimRight(s, "<>")
	if s == "" {
		return 0, &ParseError{Msg: "missing coordinate"}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{Msg: fmt.Sprintf("invalid coordinate: %s", s)}
	}
	if v < 0 {
		return 0, &ParseError{Msg: fmt.Sprintf("negative coordinate: %d", v)}
	}
	return v, nil
}
