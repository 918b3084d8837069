// Package extractor produces a symbol table from C++ source tokens.
//
// Extraction is restricted to the first occurrence of the designated
// namespace block; declarations outside it are invisible. The extractor
// recognizes classes and structs (with single-inheritance base types,
// constructors, methods with const/static qualifiers, and fields), free
// functions, and template declarations whose signatures are recorded
// without evaluating the template body.
//
// Extraction never executes or semantically validates the native code.
// A declaration with a syntactically malformed signature is skipped and
// recorded as a soft warning so one bad declaration never blocks the
// rest of the file. Declarations whose name begins with an underscore,
// or whose body is a one-line forwarding stub, are recorded but hidden;
// an explicit export directive naming them verbatim still binds them.
package extractor
