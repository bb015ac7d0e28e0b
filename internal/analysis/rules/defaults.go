package rules

import "github.com/turtacn/ClauseWise/pkg/types/legal"

// Default returns a fresh copy of the built-in rule tables.
func Default() *Tables {
	return &Tables{
		Segmentation: SegmentationRules{
			Markers: []string{
				"WHEREAS", "NOW, THEREFORE", "IN WITNESS WHEREOF", "SECTION", "ARTICLE",
				"CLAUSE", "PROVIDED", "PROVIDED THAT", "FURTHER", "ADDITIONALLY",
				"MOREOVER", "FURTHERMORE", "IN ADDITION", "THEREFORE", "HEREBY",
				"AGREES", "AGREED", "PARTIES", "DEFINITIONS", "SCOPE",
				"TERM", "TERMINATION", "LIABILITY", "INDEMNIFICATION", "CONFIDENTIALITY",
				"NON-DISCLOSURE", "PAYMENT", "COMPENSATION", "BENEFITS", "DUTIES",
				"OBLIGATIONS", "REPRESENTATIONS", "WARRANTIES", "COVENANTS", "CONDITIONS",
				"DEFAULT", "BREACH", "REMEDIES", "DISPUTE", "ARBITRATION",
				"GOVERNING LAW", "JURISDICTION", "AMENDMENT", "WAIVER", "SEVERABILITY",
				"ENTIRE AGREEMENT", "FORCE MAJEURE", "NOTICES", "ASSIGNMENT", "SUCCESSORS",
				"COUNTERPARTS",
			},
			NumberedPatterns: []string{
				`^\d+\.`,
				`^[a-z]\)`,
				`^[A-Z]\.`,
				`^\([a-z]\)`,
				`^\([A-Z]\)`,
			},
			HeadingMaxLength: 50,
			MinClauseLength:  20,
			DefaultMaxLength: 1000,
		},

		ClauseRules: []ClauseRule{
			{Type: legal.ClauseConfidentiality, Keywords: []string{"confidential", "non-disclosure"}},
			{Type: legal.ClauseTermination, Keywords: []string{"termination", "terminate"}},
			{Type: legal.ClausePayment, Keywords: []string{"payment", "pay", "fee"}},
			{Type: legal.ClauseLiability, Keywords: []string{"liability", "responsible"}},
			{Type: legal.ClauseBreach, Keywords: []string{"breach", "default"}},
			{Type: legal.ClauseGoverningLaw, Keywords: []string{"governing law", "jurisdiction"}},
			{Type: legal.ClauseDisputeResolution, Keywords: []string{"dispute", "arbitration"}},
		},

		Documents: DocumentScoring{
			Rules: []DocumentRule{
				{Type: legal.DocumentNDA, Keywords: []string{"confidential", "non-disclosure", "proprietary", "trade secret", "nda"}},
				{Type: legal.DocumentEmployment, Keywords: []string{"employment", "employee", "hire", "termination", "salary", "compensation", "work"}},
				{Type: legal.DocumentLease, Keywords: []string{"lease", "rent", "tenant", "landlord", "property", "premises", "rental"}},
				{Type: legal.DocumentService, Keywords: []string{"service", "vendor", "provider", "deliverable", "scope", "consulting"}},
				{Type: legal.DocumentPurchase, Keywords: []string{"purchase", "buy", "sale", "payment", "delivery", "goods", "product"}},
				{Type: legal.DocumentPartnership, Keywords: []string{"partnership", "partner", "joint venture", "collaboration", "cooperation"}},
			},
			Normalization:      3.0,
			FallbackConfidence: 0.3,
		},

		Simplification: SimplificationRules{
			Replacements: []Replacement{
				{"hereinafter", "from now on"},
				{"whereas", "since"},
				{"aforesaid", "mentioned above"},
				{"pursuant to", "according to"},
				{"notwithstanding", "despite"},
				{"in witness whereof", "to confirm this"},
				{"party of the first part", "first party"},
				{"party of the second part", "second party"},
				{"hereby", "by this"},
				{"herein", "in this document"},
				{"hereto", "to this"},
				{"hereof", "of this"},
				{"thereof", "of that"},
				{"therein", "in that"},
				{"thereto", "to that"},
				{"subject to", "depending on"},
				{"in accordance with", "following"},
				{"for the avoidance of doubt", "to be clear"},
				{"save and except", "except"},
				{"mutatis mutandis", "with necessary changes"},
				{"inter alia", "among other things"},
				{"prima facie", "at first glance"},
				{"de facto", "in fact"},
				{"de jure", "by law"},
				{"ex parte", "from one side"},
				{"in camera", "in private"},
				{"sub judice", "under consideration"},
				{"ultra vires", "beyond authority"},
				{"bona fide", "in good faith"},
				{"mala fide", "in bad faith"},
				{"force majeure", "unforeseen circumstances"},
				{"ipso facto", "by that very fact"},
				{"per se", "by itself"},
				{"ad hoc", "for this specific purpose"},
				{"pro rata", "proportionally"},
				{"quid pro quo", "something for something"},
				{"status quo", "current situation"},
				{"vice versa", "the other way around"},
				{"et al", "and others"},
				{"i.e.", "that is"},
				{"e.g.", "for example"},
				{"viz.", "namely"},
				{"cf.", "compare"},
				{"ibid", "same source"},
				{"op. cit.", "work cited"},
				{"loc. cit.", "place cited"},
				{"supra", "above"},
				{"infra", "below"},
				{"ante", "before"},
				{"post", "after"},
			},
			Connectors: []string{
				" and ", " or ", " but ", " however ", " furthermore ", " moreover ", " additionally ",
			},
			LongSentenceLength: 100,
			Glossary: []GlossaryEntry{
				{"liability", "'liability' means legal responsibility for damages"},
				{"indemnification", "'indemnification' means protection against legal claims"},
				{"breach", "'breach' means violation of the agreement"},
				{"termination", "'termination' means ending the agreement"},
				{"jurisdiction", "'jurisdiction' means which court system applies"},
				{"arbitration", "'arbitration' means dispute resolution outside of court"},
				{"governing law", "'governing law' means which state's laws apply"},
				{"force majeure", "'force majeure' means unforeseeable circumstances that prevent performance"},
			},
			GlossaryHeading: "Key terms explained: ",
			SummaryHeading:  "SUMMARY:\nThis document has been simplified to make it easier to understand. The key points are:",
			Themes: []Theme{
				{Triggers: []string{"shall", "must"}, Bullet: "- Contains obligations that must be followed"},
				{Triggers: []string{"liability"}, Bullet: "- Discusses legal responsibility"},
				{Triggers: []string{"termination"}, Bullet: "- Explains how the agreement can end"},
				{Triggers: []string{"payment", "compensation"}, Bullet: "- Contains payment terms"},
			},
			FallbackTheme: "- Review all terms carefully before signing",
		},

		Entities: EntityRules{
			Patterns: []EntityPattern{
				{
					Kind:       legal.EntityMonetaryAmount,
					Pattern:    `\$[\d,]+(?:\.\d{2})?|\d+\s*(?:dollars?|USD|euros?|pounds?)`,
					Confidence: 0.9,
				},
				{
					Kind:       legal.EntityDate,
					Pattern:    `\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{2}-\d{2}|\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`,
					Confidence: 0.8,
				},
				{
					Kind:       legal.EntityOrganization,
					Pattern:    `\b[A-Z][a-zA-Z\s&.,]+(?:Corporation|Corp|Inc|LLC|Ltd|Company|Co|Partners|Associates)\b`,
					Confidence: 0.7,
				},
			},
			LegalTerms: []string{
				"confidentiality", "non-disclosure", "proprietary", "trade secret",
				"liability", "indemnification", "breach", "termination",
				"jurisdiction", "arbitration", "governing law", "force majeure",
				"intellectual property", "copyright", "trademark", "patent",
				"warranty", "representation", "covenant", "condition",
			},
			LegalTermConfidence:  0.6,
			Obligations:          []string{"shall", "must", "will", "agree to", "obligated to", "required to"},
			ObligationConfidence: 0.6,
		},

		Insight: InsightRules{
			SummaryKeywords: []string{
				"shall", "must", "agree", "obligated", "liable",
				"terminate", "breach", "damages", "confidential", "non-disclosure",
			},
			SummarySentences: 5,
			KeyPoints: []KeyPoint{
				{"confidential", "Contains confidentiality obligations"},
				{"termination", "Specifies termination conditions"},
				{"liability", "Defines liability and responsibility"},
				{"payment", "Outlines payment terms and conditions"},
				{"breach", "Defines what constitutes a breach"},
				{"governing law", "Specifies which law applies"},
				{"dispute", "Outlines dispute resolution process"},
				{"amendment", "Specifies how changes can be made"},
				{"force majeure", "Covers unforeseen circumstances"},
				{"indemnification", "Defines protection against losses"},
			},
			DefaultKeyPoint: "Standard legal clause",
			PositiveTerms:   []string{"benefit", "right", "entitle", "protect", "secure", "guarantee"},
			NegativeTerms:   []string{"penalty", "breach", "violation", "terminate", "forfeit", "damage"},
			KeyPhraseTerms:  []string{"shall", "must", "agree", "obligated", "liable", "terminate", "breach", "damages"},
			KeyPhraseLimit:  10,
			WordsPerMinute:  200,
			KeyElements: []string{
				"subject to", "provided that", "except as", "unless otherwise", "in the event", "upon",
				"within", "prior to", "subsequent to", "notwithstanding", "pursuant to", "in accordance with",
			},
			Conditions: []string{"if", "when", "provided", "subject to", "conditional upon"},
			Exceptions: []string{"except", "excluding", "notwithstanding", "save for"},
		},
	}
}

//Personal.AI order the ending
