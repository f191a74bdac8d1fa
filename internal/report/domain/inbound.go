package domain

import "time"

// InboundEmail is one mailbox message that passed the subject and sender
// checks, with its supported attachments already downloaded. It only lives
// for the duration of an ingestion run.
type InboundEmail struct {
	MessageID       string
	ThreadID        string
	InternalDate    time.Time
	Subject         string
	From            string
	To              string
	DateHeader      string
	MessageIDHeader string
	Snippet         string
	Attachments     []InboundAttachment
}

// InboundAttachment is a downloaded document attachment. Data is never
// truncated; oversized attachments are dropped before this point.
type InboundAttachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// ExtractedText is the plain text recovered from one attachment. OCR marks
// whether the fallback transcription path produced it.
type ExtractedText struct {
	Text string
	OCR  bool
}
