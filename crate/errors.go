package crate

import "github.com/code19m/errx"

// Error codes for manifest operations.
const (
	// CodeMalformedManifest is returned when stored manifest bytes cannot be parsed
	// into a consistent manifest. It needs operator attention, nothing repairs it.
	CodeMalformedManifest = "MALFORMED_MANIFEST"

	// CodeInvalidMetadata is returned when registration input lacks mandatory fields.
	CodeInvalidMetadata = "INVALID_METADATA"
)

func malformed(reason string, details errx.D) error {
	if details == nil {
		details = errx.D{}
	}
	details["reason"] = reason
	return errx.New(
		"malformed manifest: "+reason,
		errx.WithCode(CodeMalformedManifest),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(details),
	)
}

func invalidMetadata(fields errx.M) error {
	return errx.New(
		"invalid file metadata",
		errx.WithCode(CodeInvalidMetadata),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}
