// Package primitives provides the lexical primitives and the record model
// for normalized PICA+ data: tags, occurrences, subfield codes and values,
// fields and records, together with the wire decoder and encoder.
//
// This package contains the foundational types only. All other internal
// packages import primitives; primitives imports nothing internal. This
// keeps the record model the lowest layer with no circular dependencies.
//
// Key constraints:
//   - Decoded values are byte slices into the caller's buffer (zero copy).
//     Callers that retain a record past the next read must convert it to
//     an owned Record first.
//   - A record never contains zero fields.
//   - Encoding a decoded record reproduces the input byte for byte.
package primitives
