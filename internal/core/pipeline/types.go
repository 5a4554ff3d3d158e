// Package pipeline drives one document through decode, optional enhancement,
// recognition, classification and persistence, one page at a time.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
	"github.com/joseph-ayodele/scanocr/internal/core/preprocess"
	"github.com/joseph-ayodele/scanocr/internal/core/raster"
)

// Stage names used for timing.
const (
	StageDecode     = "decode"
	StagePreprocess = "preprocess"
	StageRecognize  = "recognize"
	StagePersist    = "persist"
)

// Document is a named PDF buffer.
type Document struct {
	Name string // basename without extension
	Path string
	Data []byte
}

// LoadDocument reads a PDF from disk. A read failure is a DecodeError.
func LoadDocument(path string) (Document, error) {
	base := filepath.Base(path)
	doc := Document{Name: strings.TrimSuffix(base, filepath.Ext(base)), Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, common.DecodeError("read "+path, err)
	}
	doc.Data = data
	return doc, nil
}

// Options is the per-run pipeline configuration. It is built once by the
// caller and never changes during a run.
type Options struct {
	Preprocess    bool
	Engine        ocr.EngineConfig
	PageTimeout   time.Duration // 0 = no per-page limit
	NormalizeText bool
}

type PageResult struct {
	Page          int
	Total         int
	Status        constants.PageStatus
	Tier          constants.QualityTier // empty unless recognized
	Confidence    float64
	Enhanced      bool
	PreprocessErr error
	OutputPath    string
	Err           error
	Duration      time.Duration
}

type DocumentResult struct {
	Name     string
	Path     string
	Status   constants.DocumentStatus
	Pages    []PageResult
	Err      error
	Duration time.Duration
}

// Failed reports whether the document or any of its pages failed.
func (r DocumentResult) Failed() bool {
	if r.Status != constants.DocumentDone {
		return true
	}
	for _, p := range r.Pages {
		if p.Status.Failed() {
			return true
		}
	}
	return false
}

// ImageSource turns a PDF buffer into ordered page rasters.
type ImageSource interface {
	Decode(ctx context.Context, data []byte) ([]*raster.Image, error)
}

// Enhancer is the optional preprocessing step.
type Enhancer interface {
	Enhance(img *raster.Image) preprocess.Outcome
}

// PageWriter persists the text of one page and returns where it went.
type PageWriter interface {
	WritePage(ctx context.Context, doc Document, page int, text string) (string, error)
}

// Reporter receives human-facing progress.
type Reporter interface {
	DocumentStarted(doc Document)
	PageFinished(doc Document, res PageResult)
	DocumentFinished(res DocumentResult)
}

// Recorder receives metrics.
type Recorder interface {
	DocumentStarted()
	DocumentFinished(res DocumentResult)
	PageFinished(res PageResult)
	StageObserved(stage string, d time.Duration)
}

type nopReporter struct{}

func (nopReporter) DocumentStarted(Document)          {}
func (nopReporter) PageFinished(Document, PageResult) {}
func (nopReporter) DocumentFinished(DocumentResult)   {}

type nopRecorder struct{}

func (nopRecorder) DocumentStarted()                    {}
func (nopRecorder) DocumentFinished(DocumentResult)     {}
func (nopRecorder) PageFinished(PageResult)             {}
func (nopRecorder) StageObserved(string, time.Duration) {}
