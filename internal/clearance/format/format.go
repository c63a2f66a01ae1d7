// Package format is the static registry of certificate-of-clearance variants.
//
// The office issues six certificate formats. Which narrative a certificate
// carries, and which fields a submission must provide, both derive from the
// configuration registered here.
package format

import (
	"context"
	"log/slog"

	dErrors "fiscalia/pkg/domain-errors"
)

// Code identifies one of the six certificate variants.
type Code string

const (
	CodeA Code = "A" // no criminal record, requested by the subject
	CodeB Code = "B" // with criminal record, requested by the subject
	CodeC Code = "C" // no criminal record, requested by a family member
	CodeD Code = "D" // with criminal record, requested by a family member
	CodeE Code = "E" // no derogatory record wording
	CodeF Code = "F" // BALSAFF firearm application, requires case detail
)

// Config captures everything that varies between certificate formats.
// The six registered configs are mutually exclusive in template routing:
// exactly one of the variant flags / flag combinations selects a narrative.
type Config struct {
	Code  Code
	Label string

	// HasCriminalRecord marks formats whose subject has cases to enumerate.
	HasCriminalRecord bool
	// IsFamilyRequest marks formats requested by a third party or family
	// member rather than the subject.
	IsFamilyRequest bool
	// IsDerogatoryVariant selects "no derogatory record" wording instead of
	// "no criminal record".
	IsDerogatoryVariant bool
	// IsBalsaffVariant marks the firearm-related application variant, which
	// requires case detail regardless of conviction status.
	IsBalsaffVariant bool
}

var catalog = map[Code]Config{
	CodeA: {
		Code:  CodeA,
		Label: "No criminal record (individual request)",
	},
	CodeB: {
		Code:              CodeB,
		Label:             "With criminal record (individual request)",
		HasCriminalRecord: true,
	},
	CodeC: {
		Code:            CodeC,
		Label:           "No criminal record (family request)",
		IsFamilyRequest: true,
	},
	CodeD: {
		Code:              CodeD,
		Label:             "With criminal record (family request)",
		HasCriminalRecord: true,
		IsFamilyRequest:   true,
	},
	CodeE: {
		Code:                CodeE,
		Label:               "No derogatory record",
		IsDerogatoryVariant: true,
	},
	CodeF: {
		Code:              CodeF,
		Label:             "BALSAFF firearm application",
		HasCriminalRecord: true,
		IsBalsaffVariant:  true,
	},
}

// Lookup returns the configuration for a format code.
// Codes outside the fixed A..F set fail with an unknown-format error;
// persistence paths must treat that as a hard rejection.
func Lookup(code Code) (Config, error) {
	if cfg, ok := catalog[code]; ok {
		return cfg, nil
	}
	return Config{}, dErrors.New(dErrors.CodeUnknownFormat, "unknown certificate format "+string(code))
}

// LookupOrDefault resolves a format code, degrading to format A when the code
// is unknown. This keeps preview rendering resilient while a submission is
// still being composed. The degradation is logged; it is never acceptable for
// a persisted record, which must go through Lookup.
func LookupOrDefault(ctx context.Context, code Code, logger *slog.Logger) Config {
	cfg, err := Lookup(code)
	if err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "unknown certificate format, degrading preview to format A",
				"format_code", string(code),
			)
		}
		return catalog[CodeA]
	}
	return cfg
}

// All returns every registered config in code order.
func All() []Config {
	return []Config{catalog[CodeA], catalog[CodeB], catalog[CodeC], catalog[CodeD], catalog[CodeE], catalog[CodeF]}
}
