// Package text turns visible page text into word tokens.
//
// Tokenize folds case, strips accents, and splits on every character that is
// not an ASCII letter, digit or hyphen, then on hyphens. "Café-au-lait's"
// yields ["cafe", "au", "lait", "s"].
package text
