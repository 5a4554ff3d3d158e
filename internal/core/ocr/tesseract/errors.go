package tesseract

import "errors"

// ErrNotEnabled is returned when the gosseract backend is requested from a
// binary built without the "ocr" tag.
var ErrNotEnabled = errors.New("gosseract backend not enabled; rebuild with -tags ocr")

var errBusy = errors.New("engine busy or closed")
