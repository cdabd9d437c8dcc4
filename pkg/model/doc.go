// Package model defines the form schema consumed by the question engine and
// the typed answers it produces. A Question carries one of eight closed
// QuestionType tags; every tag has a matching AnswerValue variant so the
// engine, the submission builder and the workflow can dispatch exhaustively
// over the same set. Choice questions keep their options as a JSON-encoded
// string list (`possible_answers`) exactly as the tabular store holds them;
// DecodeOptions and EncodeOptions convert between that wire form and Go
// slices, and multiple_choice answers are serialized back with the same
// encoding. Domain failures are exposed as sentinel errors in errors.go so
// callers can match them with errors.Is regardless of which layer wrapped
// them.
package model
