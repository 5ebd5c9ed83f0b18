// Package shared holds cross-cutting utilities that belong to no
// single domain package.
//
// The testutil subpackage provides test helpers, currently a capturing
// slog handler for asserting on structured log output:
//
//	func TestSomething(t *testing.T) {
//	    logger, captured := testutil.NewTestLogger(t)
//	    component := NewComponent(logger)
//
//	    component.Do()
//
//	    testutil.AssertLogged(t, captured, slog.LevelWarn, "expected message")
//	}
//
// Nothing in this package may import other internal packages; it sits
// below all of them in the dependency order.
package shared
