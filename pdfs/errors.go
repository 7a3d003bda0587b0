package pdfs

import (
	"errors"
	"fmt"
)

// ErrTemplateNotFound - no stored template under the requested filename
var ErrTemplateNotFound = errors.New("pdfs: template not found")

// DocumentError reports template bytes that cannot be handled as a PDF,
// or a failure serializing the composed document.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("pdfs: %s: %v", e.Op, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
