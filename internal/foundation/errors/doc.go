// Package errors provides the classified error type used across docnav.
//
// A ClassifiedError carries a category (what kind of failure), a severity (how bad)
// and a retry strategy, plus structured context. Errors are built with a fluent
// builder and mapped to CLI exit codes by CLIErrorAdapter.
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write export").
//		WithContext("path", path).
//		Build()
package errors
