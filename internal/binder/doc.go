// Package binder cross-references binding descriptor directives against
// the merged symbol table of a module's linked source files.
//
// Overload resolution never picks silently: a single candidate binds
// directly; multiple candidates require an explicit parameter-type
// signature, compared after normalizing reference and const-qualifier
// spelling noise (`const T&` and `T const&` are the same type); an
// ambiguous export without a signature, or a signature matching no
// candidate, is a BindError naming every candidate.
//
// Template instantiation directives synthesize one concrete declaration
// per type argument by textual substitution, named
// `<template>_<argument>` with the argument sanitized for identifier
// validity.
//
// The binder's outputs are a binding plan and the generated glue text;
// it performs no file I/O.
package binder
