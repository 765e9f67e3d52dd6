package als

import "errors"

// ErrMalformedDocument indicates the input bytes are neither valid
// gzip-wrapped XML nor valid plain XML.
var ErrMalformedDocument = errors.New("malformed project document")
