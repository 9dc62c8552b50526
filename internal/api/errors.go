package api

import (
	domainerrors "github.com/docvaultapp/docvault-server/internal/errors"
)

// invalidParam builds the rejection error for a bad query parameter.
func invalidParam(name, value string) error {
	return domainerrors.InvalidCriteriaf("invalid %s parameter: %q", name, value)
}
