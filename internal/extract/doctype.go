package extract

// DocType is the classification verdict for a document's dominant content.
type DocType string

const (
	DocTypeEmpty      DocType = "empty"
	DocTypeTextBased  DocType = "text_based"
	DocTypeImageBased DocType = "image_based"
)

// Classify determines a document's type from its content counts.
//
// The tie case (equal text and image ratios) and the drawings-only case both
// resolve to image-based. That is a deliberate product decision: anything not
// clearly dominated by text is treated as needing image handling downstream.
func Classify(textBlockCount, imageCount, drawingCount int) DocType {
	total := textBlockCount + imageCount + drawingCount
	if total == 0 {
		return DocTypeEmpty
	}
	textRatio := float64(textBlockCount) / float64(total)
	imageRatio := float64(imageCount) / float64(total)
	if textRatio > imageRatio {
		return DocTypeTextBased
	}
	return DocTypeImageBased
}
