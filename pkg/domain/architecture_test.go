package domain_test

import (
	"testing"

	"sanctuarycore/testutil"
)

// The domain package is the dependency floor: it must never reach into the
// internal tree, or the validators and entities stop being reusable in
// isolation.
func TestDomainDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImport,
		"pkg/domain must not depend on internal packages")
}
