// Package apperr holds the error taxonomy shared by the pipeline and its entry points.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for boundary mapping.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindTranscode        Kind = "transcode"
	KindTranscriptionAPI Kind = "transcription_api"
	KindSummaryAPI       Kind = "summary_api"
	KindStorage          Kind = "storage"
	KindNotFound         Kind = "not_found"
	KindInternal         Kind = "internal"
)

// Error is a classified failure. Detail carries diagnostics such as tool stderr.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, so errors.Is(err, apperr.Transcode) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	Validation       = &Error{Kind: KindValidation}
	Transcode        = &Error{Kind: KindTranscode}
	TranscriptionAPI = &Error{Kind: KindTranscriptionAPI}
	SummaryAPI       = &Error{Kind: KindSummaryAPI}
	Storage          = &Error{Kind: KindStorage}
	NotFound         = &Error{Kind: KindNotFound}
)

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func WithDetail(kind Kind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
