// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the application,
// facilitating consistent and DRY testing across the codebase. Instead of defining
// inline mocks in individual test files, these standardized mock implementations
// can be reused.
//
// The store mocks are small in-memory implementations rather than pure stubs:
// they keep items between calls and enforce the same version check as the SQL
// stores, so service tests exercise real read-modify-write sequences. Every
// method can still be overridden with a function field.
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/wordloom/wordloom-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    items := mocks.NewMockReviewItemStore()
//	    items.FindDueErr = store.ErrUnavailable
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
//  4. Update existing tests to use the centralized mock implementation
package mocks
