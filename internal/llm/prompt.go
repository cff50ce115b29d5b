package llm

import "strings"

// BuildSystemPrompt is the instruction block for the label reader. The
// wording is deliberately strict about omission: hallucinated weights are
// worse than missing ones, because the reconciliation step trusts them.
func BuildSystemPrompt() string {
	parts := []string{
		"You read photos of food product labels from Brazilian suppliers. Return ONLY JSON that matches the JSON Schema provided.",
		"Transcribe only what is printed on the label. Never guess, never infer, never fill in typical values.",
		"If a field is not clearly readable on the label, OMIT it from the JSON. Never output null or empty strings.",
		"Dates use DD/MM/YYYY. Two-digit years belong to 2000-2099.",
		"Weights are kilograms as numbers. Convert grams to kilograms (500 G -> 0.5).",
		"'type' is the storage classification: frozen, refrigerated, fresh, or unknown. Map Portuguese terms (CONGELADO, RESFRIADO, FRESCO).",
		"'sif' is the federal inspection number if stamped on the label.",
		"'label_temperature' is the storage temperature in Celsius printed on the label, if any.",
		"Set 'confidence' to high, medium, or low for the transcription as a whole.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt assembles the per-request context: the operator's supplier
// selection and any pre-read OCR text as a hint.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Read the attached label photo.")
	if req.Supplier != "" {
		b.WriteString("\nThe operator registered this delivery under supplier: ")
		b.WriteString(req.Supplier)
		b.WriteString(". Use it only to disambiguate, not as a source of fields.")
	}
	if req.OCRText != "" {
		b.WriteString("\n\nA raw OCR pass produced this text (may contain errors):\n")
		if len(req.OCRText) > 3000 {
			b.WriteString(req.OCRText[:3000])
		} else {
			b.WriteString(req.OCRText)
		}
	}
	return b.String()
}
