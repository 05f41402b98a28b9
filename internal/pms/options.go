package pms

import "time"

type ConflictMode string

const (
	// ModeRelocateIncumbent moves the existing guest to a suffixed phone and
	// gives the clean number to the newcomer.
	ModeRelocateIncumbent ConflictMode = "relocate-incumbent"
	// ModeSuffixNewcomer leaves the existing guest alone and stores the
	// newcomer under the first free suffixed phone.
	ModeSuffixNewcomer ConflictMode = "suffix-newcomer"
)

const DefaultPhoneSuffix = "-dup"

// Options are the reconciliation business rules, fixed at construction.
type Options struct {
	MaxRetries       int           // attempts per vendor call, including the first
	RetryWait        time.Duration // fixed wait between attempts
	StrictPhone      bool          // validate phone format instead of only capping length
	PhoneSuffix      string
	ConflictMode     ConflictMode
	MaxConflictDepth int
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:       3,
		RetryWait:        time.Second,
		PhoneSuffix:      DefaultPhoneSuffix,
		ConflictMode:     ModeRelocateIncumbent,
		MaxConflictDepth: 8,
	}
}

// WithDefaults fills zero fields so a partially populated Options stays usable.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.RetryWait < 0 {
		o.RetryWait = 0
	}
	if o.PhoneSuffix == "" {
		o.PhoneSuffix = d.PhoneSuffix
	}
	if o.ConflictMode == "" {
		o.ConflictMode = d.ConflictMode
	}
	if o.MaxConflictDepth <= 0 {
		o.MaxConflictDepth = d.MaxConflictDepth
	}
	return o
}
