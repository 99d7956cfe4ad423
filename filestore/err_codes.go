package filestore

import "github.com/code19m/errx"

// Error codes for filestore operations.
const (
	// CodeFileNotFound is returned when a file does not exist at the specified path.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeBackendFault is returned when the storage backend fails (network, permission, disk).
	CodeBackendFault = "STORAGE_BACKEND_FAULT"

	// CodeInvalidPath is returned when a path cannot be mapped onto the backend.
	CodeInvalidPath = "INVALID_PATH"
)

// NotFound builds the error every backend returns for a missing path.
func NotFound(path string) error {
	return errx.New(
		"file not found",
		errx.WithCode(CodeFileNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"path": path}),
	)
}

// BackendFault wraps a backend error with the operation and path it failed on.
func BackendFault(err error, op, path string) error {
	return errx.Wrap(
		err,
		errx.WithCode(CodeBackendFault),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"op": op, "path": path}),
	)
}

// InvalidPath reports a path that is empty or escapes the backend root.
func InvalidPath(path string) error {
	return errx.New(
		"invalid storage path",
		errx.WithCode(CodeInvalidPath),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"path": path}),
	)
}

// IsNotFound reports whether err carries CodeFileNotFound.
func IsNotFound(err error) bool {
	return errx.IsCodeIn(err, CodeFileNotFound)
}
