// Package checks holds the concrete patch checks. Importing it registers them
// with the rules registry.
package checks

import "patchmedic/internal/rules"

// All lists every check in the order it runs and is reported.
var All = []rules.Check{
	&SummaryRule{},
	&ApplyPatchRule{},
	&ValidAuthorRule{},
	&SignedOffRule{},
	&DiffFormatRule{},
}

func init() {
	for _, c := range All {
		rules.Register(c)
	}
}
