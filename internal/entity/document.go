package entity

import (
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

// Section is a detected heading-delimited span of RawText. Offsets are byte offsets.
type Section struct {
	Name        string `json:"name"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
}

// Table is an optional table lifted out of the source document.
type Table struct {
	Caption string     `json:"caption,omitempty"`
	Rows    [][]string `json:"rows"`
}

// EvidenceExcerpt ties a character range of RawText to a page of the original file.
type EvidenceExcerpt struct {
	Page        int    `json:"page"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Excerpt     string `json:"excerpt,omitempty"`
}

// ParsedDocument is produced by the document-parsing collaborator and is immutable afterwards.
type ParsedDocument struct {
	RawText         string             `json:"rawText"`
	PrimaryLanguage constants.Language `json:"primaryLanguage"`
	Sections        []Section          `json:"sections"`
	Tables          []Table            `json:"tables,omitempty"`
	EvidenceMap     []EvidenceExcerpt  `json:"evidenceMap"`
}

// SectionText returns the text covered by s, clamped to the document bounds.
func (d ParsedDocument) SectionText(s Section) string {
	start, end := s.StartOffset, s.EndOffset
	if start < 0 {
		start = 0
	}
	if end > len(d.RawText) {
		end = len(d.RawText)
	}
	if start >= end {
		return ""
	}
	return strings.ToValidUTF8(d.RawText[start:end], "")
}

// PageAt returns the page of the evidence excerpt covering offset, or 0 when unknown.
func (d ParsedDocument) PageAt(offset int) int {
	for _, ev := range d.EvidenceMap {
		if offset >= ev.StartOffset && offset < ev.EndOffset {
			return ev.Page
		}
	}
	return 0
}
