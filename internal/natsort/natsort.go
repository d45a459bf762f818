// Package natsort orders strings the way humans read mixed identifiers:
// digit runs compare numerically, known instance-size words rank by machine
// size rather than spelling, and everything else falls back to plain text
// order. It exists so that catalog keys like m5.xlarge, m5.2xlarge and
// m5.16xlarge come out in size order instead of ASCII order.
package natsort

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// runPattern splits a string into maximal runs of exactly one character
// class. Hyphen and underscore belong to the letter class so that compound
// size words like "x-large" stay in one run.
var runPattern = regexp.MustCompile(`([0-9]+)|([-A-Za-z_]+)|([^-0-9A-Za-z_]+)`)

// instanceSizes is the fixed ordering of bare size descriptors. A letter run
// matching one of these exactly ranks by its position instead of its text,
// so "micro" sorts before "small" even though the alphabet says otherwise.
var instanceSizes = []string{
	"micro",
	"small",
	"medium",
	"large",
	"xlarge",
	"x-large",
	"extra-large",
}

var logger = zerolog.Nop()

// SetLogger installs the logger used for rank diagnostics. The default
// discards them.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// Run is one segment of a key string together with its precomputed sort
// fields. Exactly one class applies: Num is the value of a digit run and -1
// otherwise, Alpha carries a size rank or the raw text of a letter run and
// "-1" otherwise, Other carries the raw text of a punctuation run and ""
// otherwise.
type Run struct {
	Num   int64
	Alpha string
	Other string

	ranked bool
}

func (r Run) isAlpha() bool {
	return r.Num == -1 && r.Other == ""
}

// Key decomposes s into its comparable runs. Keys compare lexicographically
// run by run, so Key("m5.2xlarge") sorts after Key("m5.xlarge"): the digit
// run 2 loses to the higher-ranked size word at the same position.
func Key(s string) []Run {
	matches := runPattern.FindAllStringSubmatch(s, -1)
	key := make([]Run, 0, len(matches))
	for _, m := range matches {
		switch {
		case m[1] != "":
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				// Digit runs beyond int64 saturate.
				n = math.MaxInt64
			}
			key = append(key, Run{Num: n, Alpha: "-1"})
		case m[2] != "":
			run := Run{Num: -1, Alpha: m[2]}
			if rank := sizeRank(m[2]); rank >= 0 {
				run.Alpha = strconv.Itoa(rank)
				run.ranked = true
			}
			key = append(key, run)
		default:
			key = append(key, Run{Num: -1, Alpha: "-1", Other: m[3]})
		}
	}
	return key
}

func sizeRank(run string) int {
	for i, size := range instanceSizes {
		if run == size {
			return i
		}
	}
	return -1
}

// Compare orders two keys, earlier runs dominating. A shorter key that is a
// prefix of a longer one sorts first.
func Compare(a, b []Run) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareRun(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareRun(a, b Run) int {
	switch {
	case a.Num < b.Num:
		return -1
	case a.Num > b.Num:
		return 1
	}
	if a.Alpha != b.Alpha {
		if a.isAlpha() && b.isAlpha() && a.ranked != b.ranked {
			warnMixedRanks(a, b)
		}
		return strings.Compare(a.Alpha, b.Alpha)
	}
	return strings.Compare(a.Other, b.Other)
}

// warnMixedRanks fires when a size-vocabulary rank is compared against the
// raw text of an unranked letter run. Catalog keys never hit this in
// practice; if one does, the ordering of that pair is text-vs-digits and
// worth a look.
func warnMixedRanks(a, b Run) {
	ranked, raw := a, b
	if b.ranked {
		ranked, raw = b, a
	}
	logger.Warn().
		Str("size_rank", ranked.Alpha).
		Str("text", raw.Alpha).
		Msg("Natural sort compared a size rank against plain text")
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(Key(a), Key(b)) < 0
}

type byNaturalKey struct {
	keys  []string
	cache [][]Run
}

func (s byNaturalKey) Len() int { return len(s.keys) }

func (s byNaturalKey) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.cache[i], s.cache[j] = s.cache[j], s.cache[i]
}

func (s byNaturalKey) Less(i, j int) bool {
	return Compare(s.cache[i], s.cache[j]) < 0
}

// Sort orders keys in place by natural order. Each key is decomposed once,
// not once per comparison, and equal keys keep their input order.
func Sort(keys []string) {
	cache := make([][]Run, len(keys))
	for i, k := range keys {
		cache[i] = Key(k)
	}
	sort.Stable(byNaturalKey{keys: keys, cache: cache})
}
