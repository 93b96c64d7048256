// Package matcher implements the boolean predicate DSL over PICA+
// records.
//
// A matcher expression addresses fields by tag pattern and occurrence
// and tests their subfields with relational, regex, set-membership,
// similarity, existence and cardinality operators. Expressions compose
// with !, &&, XOR (^) and || (precedence in that order, parentheses
// override) and may be quantified with ALL/ANY.
//
// Parsing is strict and happens before any record is read; evaluation
// is short-circuit left-to-right and never fails. Evaluation behavior
// that is not part of an expression, such as case folding, the
// similarity threshold and Unicode normalization, is carried in an
// Options value threaded through every call, never in the AST.
package matcher
