// Package legal defines the value types shared by the ClauseWise analysis
// engine, its application services and its public API.
package legal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClauseType labels a single clause. General is the fallback and is never absent.
type ClauseType string

const (
	ClauseConfidentiality   ClauseType = "Confidentiality"
	ClauseTermination       ClauseType = "Termination"
	ClausePayment           ClauseType = "Payment"
	ClauseLiability         ClauseType = "Liability"
	ClauseBreach            ClauseType = "Breach"
	ClauseGoverningLaw      ClauseType = "Governing Law"
	ClauseDisputeResolution ClauseType = "Dispute Resolution"
	ClauseGeneral           ClauseType = "General"
)

// AllClauseTypes returns every clause label in rule-priority order, General last.
func AllClauseTypes() []ClauseType {
	return []ClauseType{
		ClauseConfidentiality,
		ClauseTermination,
		ClausePayment,
		ClauseLiability,
		ClauseBreach,
		ClauseGoverningLaw,
		ClauseDisputeResolution,
		ClauseGeneral,
	}
}

// IsValid checks if the ClauseType is one of the enumerated labels.
func (t ClauseType) IsValid() bool {
	for _, c := range AllClauseTypes() {
		if c == t {
			return true
		}
	}
	return false
}

// DocumentType labels a whole document.
type DocumentType string

const (
	DocumentNDA         DocumentType = "NDA"
	DocumentEmployment  DocumentType = "Employment Contract"
	DocumentLease       DocumentType = "Lease Agreement"
	DocumentService     DocumentType = "Service Agreement"
	DocumentPurchase    DocumentType = "Purchase Agreement"
	DocumentPartnership DocumentType = "Partnership Agreement"
	DocumentGeneral     DocumentType = "General Contract"
)

// AllDocumentTypes returns the document labels in tie-break order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentNDA,
		DocumentEmployment,
		DocumentLease,
		DocumentService,
		DocumentPurchase,
		DocumentPartnership,
		DocumentGeneral,
	}
}

// IsValid checks if the DocumentType is one of the enumerated labels.
func (t DocumentType) IsValid() bool {
	for _, d := range AllDocumentTypes() {
		if d == t {
			return true
		}
	}
	return false
}

// documentTypeHints maps terms found in free-text replies onto labels.
// Order matters: the first hint contained in the reply wins.
var documentTypeHints = []struct {
	term string
	typ  DocumentType
}{
	{"nda", DocumentNDA},
	{"non-disclosure", DocumentNDA},
	{"confidential", DocumentNDA},
	{"employment", DocumentEmployment},
	{"employee", DocumentEmployment},
	{"hire", DocumentEmployment},
	{"lease", DocumentLease},
	{"rent", DocumentLease},
	{"tenant", DocumentLease},
	{"service", DocumentService},
	{"vendor", DocumentService},
	{"purchase", DocumentPurchase},
	{"sale", DocumentPurchase},
	{"partnership", DocumentPartnership},
	{"partner", DocumentPartnership},
	{"contract", DocumentGeneral},
	{"agreement", DocumentGeneral},
}

// ParseDocumentType maps a label or a free-text model reply onto a
// DocumentType. Exact labels match case-insensitively; otherwise the first
// matching hint term decides, and General Contract is the default.
func ParseDocumentType(s string) DocumentType {
	trimmed := strings.TrimSpace(s)
	for _, d := range AllDocumentTypes() {
		if strings.EqualFold(trimmed, string(d)) {
			return d
		}
	}
	lower := strings.ToLower(trimmed)
	for _, h := range documentTypeHints {
		if strings.Contains(lower, h.term) {
			return h.typ
		}
	}
	return DocumentGeneral
}

// Classification is a document label plus a confidence in [0,1].
type Classification struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// NewClassification clamps confidence into [0,1].
func NewClassification(t DocumentType, confidence float64) Classification {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Classification{Type: t, Confidence: confidence}
}

// EntityKind is the semantic tag of an extracted entity.
type EntityKind string

const (
	EntityOrganization   EntityKind = "Organization"
	EntityDate           EntityKind = "Date"
	EntityMonetaryAmount EntityKind = "MonetaryAmount"
	EntityLegalTerm      EntityKind = "LegalTerm"
	EntityObligation     EntityKind = "Obligation"
)

// Entity is a literal span of text tagged with a kind. Duplicates are allowed.
type Entity struct {
	Text       string     `json:"text"`
	Kind       EntityKind `json:"type"`
	Confidence float64    `json:"confidence"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents and clauses
// ─────────────────────────────────────────────────────────────────────────────

// Document is an uploaded document's text. It is never mutated after creation.
type Document struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	RawText  string `json:"raw_text"`
}

// NewDocument creates a Document with a fresh id.
func NewDocument(filename, text string) Document {
	return Document{
		ID:       uuid.New().String(),
		Filename: filename,
		RawText:  text,
	}
}

// IsBlank reports whether the document has no non-whitespace text.
func (d Document) IsBlank() bool {
	return strings.TrimSpace(d.RawText) == ""
}

// ContentHash is the hex SHA-256 of the raw text.
func (d Document) ContentHash() string {
	sum := sha256.Sum256([]byte(d.RawText))
	return hex.EncodeToString(sum[:])
}

// Clause is one segment of a document. Index is 1-based document order.
type Clause struct {
	Index int        `json:"index"`
	Text  string     `json:"text"`
	Type  ClauseType `json:"type"`
}

// ClauseAnalysis annotates one clause with its plain-language form and key points.
type ClauseAnalysis struct {
	Clause     Clause   `json:"clause"`
	Simplified string   `json:"simplified"`
	KeyPoints  []string `json:"key_points"`
}

// ClauseStructure lists the structural markers found in a clause.
type ClauseStructure struct {
	ClauseType  ClauseType `json:"clause_type"`
	KeyElements []string   `json:"key_elements"`
	Conditions  []string   `json:"conditions"`
	Exceptions  []string   `json:"exceptions"`
}

// DocumentStats are basic counts over the raw text.
type DocumentStats struct {
	WordCount          int `json:"word_count"`
	SentenceCount      int `json:"sentence_count"`
	ParagraphCount     int `json:"paragraph_count"`
	CharacterCount     int `json:"character_count"`
	ReadingTimeMinutes int `json:"estimated_reading_time"`
}

// Sentiment is the coarse tone of a document.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// AnalysisReport aggregates every analysis of one document. Steps that were
// not run leave their field at the zero value.
type AnalysisReport struct {
	ID           string            `json:"id"`
	DocumentID   string            `json:"document_id"`
	Filename     string            `json:"filename"`
	DocumentType Classification    `json:"document_type"`
	Summary      string            `json:"summary"`
	Simplified   string            `json:"simplified"`
	Clauses      []ClauseAnalysis  `json:"clauses"`
	Entities     []Entity          `json:"entities"`
	Stats        DocumentStats     `json:"stats"`
	Sentiment    Sentiment         `json:"sentiment,omitempty"`
	KeyPhrases   []string          `json:"key_phrases,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	Sources      map[string]Source `json:"sources,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IngestionResult is what a format-specific extractor hands to the engine.
type IngestionResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

//Personal.AI order the ending
