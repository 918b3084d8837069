// Package types provides shared type definitions for the cppbind builder.
//
// This package defines the domain types used across the pipeline: lexical
// tokens, extracted C++ declarations and symbol tables, binding descriptor
// directives, modules with their build states, and the error taxonomy.
//
// # Core Types
//
// Declaration represents a C++ construct (class, struct, free function or
// template) extracted from the designated namespace:
//
//	decl := &types.Declaration{
//	    Kind:       types.DeclStruct,
//	    Name:       "Circle",
//	    Members:    []types.Member{{Kind: types.MemberMethod, Name: "area"}},
//	}
//
// Directive represents one parsed descriptor directive; a Descriptor is
// the ordered sequence for one module.
//
// # Error Taxonomy
//
// Errors are scoped by blast radius: ScanError and ExtractionWarning are
// collected and never abort extraction; DescriptorSyntaxError and
// BindError are fatal for their module only; DependencyCycleError aborts
// the whole build before any compilation starts; BuildFailure fails the
// module and its transitive dependents.
package types
