// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeTimeout,
//	    "failed to push manifests",
//	    ctx.Err(),
//	    map[string]interface{}{
//	        "registry": reg,
//	        "tag": tag,
//	    },
//	)
//
// Callers branch on the code with IsCode, which looks through wrapped causes:
//
//	if errors.IsCode(err, errors.ErrCodeHostnameNotConfigured) {
//	    // ...
//	}
package errors
