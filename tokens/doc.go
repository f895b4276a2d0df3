// Package tokens provides token counting for chunk size budgets.
//
// Budgets throughout the system are expressed in sub-word tokens, counted
// with the same tokenizer family the embedding models use (cl100k_base).
// When the tokenizer cannot be constructed, counting degrades to a
// whitespace word count rather than failing the pipeline.
package tokens
