package constants

// PageStatus is the outcome of one page attempt.
type PageStatus string

// Stable values (these appear in the run report).
const (
	PageWritten       PageStatus = "WRITTEN"        // text file written
	PageEngineFailed  PageStatus = "ENGINE_FAILED"  // no OCR result
	PagePersistFailed PageStatus = "PERSIST_FAILED" // recognized, but the write failed
	PageCanceled      PageStatus = "CANCELED"       // run canceled before the page was attempted
)

// DocumentStatus is the terminal state of one document.
type DocumentStatus string

const (
	DocumentDone   DocumentStatus = "DONE"
	DocumentFailed DocumentStatus = "DOCUMENT_FAILED"
)

// Failed reports whether the page produced no text artifact.
func (s PageStatus) Failed() bool {
	return s != PageWritten
}
