package driven

// TextExtractor derives the readable text of a page capture from its markup.
// Evidence locators index into the derived text, so extraction must be
// deterministic for a given input.
type TextExtractor interface {
	ExtractText(markup string) string
}
