// Package htmltext derives the readable text of a listing page from its
// HTML. Scripts, styles and page chrome are dropped, block elements become
// line breaks and entities are decoded, so citations can be located in the
// text a reader would see.
package htmltext
