package clinic

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// DiagEntry is one recorded diagnostic from generation or evaluation.
type DiagEntry struct {
	Category string // catalog, treatment, mask, eval
	Key      string // specific event name within the category
	Value    string // human-readable detail
	NumVal   float64
}

// String formats the entry as a fixed-width log line.
//
//	catalog   skip_candidate   wrinkles@chin: zone not allowed
func (e DiagEntry) String() string {
	return fmt.Sprintf("%-9s %-16s %s", e.Category, e.Key, e.Value)
}

// DiagLog collects configuration defects and other recoverable problems.
// A nil *DiagLog discards everything, so callers that do not care can pass
// nil.
type DiagLog struct {
	entries []DiagEntry
}

// NewDiagLog creates an empty DiagLog.
func NewDiagLog() *DiagLog {
	return &DiagLog{}
}

// Add records a new entry.
func (dl *DiagLog) Add(category, key, value string, numVal float64) {
	if dl == nil {
		return
	}
	dl.entries = append(dl.entries, DiagEntry{
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// Entries returns all recorded entries.
func (dl *DiagLog) Entries() []DiagEntry {
	if dl == nil {
		return nil
	}
	return dl.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (dl *DiagLog) Filter(category, key string) []DiagEntry {
	var out []DiagEntry
	for _, e := range dl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Count returns how many entries match category and key.
func (dl *DiagLog) Count(category, key string) int {
	return len(dl.Filter(category, key))
}

// Format returns the full log as a single string.
func (dl *DiagLog) Format() string {
	var sb strings.Builder
	for _, e := range dl.Entries() {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// reporter fans a diagnostic out to the structured logger and the DiagLog.
type reporter struct {
	log  zerolog.Logger
	diag *DiagLog
}

func (r reporter) warn(category, key, value string, numVal float64) {
	r.diag.Add(category, key, value, numVal)
	r.log.Warn().
		Str("category", category).
		Str("key", key).
		Float64("value", numVal).
		Msg(value)
}

// Option configures logging for GenerateTreatment and Evaluate.
type Option func(*reporter)

// WithLogger sends diagnostics to l. The default is zerolog.Nop().
func WithLogger(l zerolog.Logger) Option {
	return func(r *reporter) { r.log = l }
}

// WithDiagLog also records diagnostics in dl.
func WithDiagLog(dl *DiagLog) Option {
	return func(r *reporter) { r.diag = dl }
}

func newReporter(opts []Option) reporter {
	r := reporter{log: zerolog.Nop()}
	for _, o := range opts {
		o(&r)
	}
	return r
}
