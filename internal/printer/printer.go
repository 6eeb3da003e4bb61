// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package printer formats scenario names into output records and
// command line arguments.
package printer

import "strings"

// Pattern is the placeholder that Format replaces with the scenario
// name. Every occurrence is replaced.
const Pattern = "{}"

// Printer renders one record per scenario name. The zero value
// produces empty records; New returns the default line printer.
type Printer struct {
	// Template is the record with Pattern placeholders.
	Template string
	// Terminator ends every record. Use "\x00" for NUL-separated
	// output consumed by xargs -0.
	Terminator string
}

// New returns a printer that writes each name as its own line.
func New() *Printer {
	return &Printer{
		Template:   Pattern,
		Terminator: "\n",
	}
}

// Format renders one record for the given scenario name.
func (p *Printer) Format(name string) string {
	return strings.ReplaceAll(p.Template, Pattern, name) + p.Terminator
}
