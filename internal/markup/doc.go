// Package markup converts the comment markup used across the product into
// HTML and back. Conversion is an ordered pipeline of regular expression
// rules; each rule sees the output of the previous one, so the order of the
// rule tables in this package is significant.
package markup
