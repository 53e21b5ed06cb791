// Package gputest provides in-memory fakes of the gpu handle interfaces. The
// fakes record every call into a shared Journal so tests can assert on the
// ordering of waits, submissions and teardown.
package gputest

import (
	"fmt"
	"strings"
)

type Journal struct {
	entries []string
}

func (j *Journal) Record(format string, args ...interface{}) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *Journal) Entries() []string {
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

func (j *Journal) Reset() {
	j.entries = j.entries[:0]
}

// Count returns the number of entries starting with prefix.
func (j *Journal) Count(prefix string) int {
	count := 0
	for _, entry := range j.entries {
		if strings.HasPrefix(entry, prefix) {
			count++
		}
	}
	return count
}

// Index returns the position of the first entry equal to entry at or after
// from, or -1.
func (j *Journal) Index(entry string, from int) int {
	for i := from; i < len(j.entries); i++ {
		if j.entries[i] == entry {
			return i
		}
	}
	return -1
}

// Filter returns the entries starting with any of the prefixes.
func (j *Journal) Filter(prefixes ...string) []string {
	var out []string
	for _, entry := range j.entries {
		for _, prefix := range prefixes {
			if strings.HasPrefix(entry, prefix) {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func (j *Journal) String() string {
	return strings.Join(j.entries, "\n")
}
