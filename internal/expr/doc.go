// Package expr implements the cfg-like filter expressions used to gate
// individual image comparison checks on host attributes.
//
// # Grammar
//
//	expr      := predicate | func
//	predicate := IDENT | IDENT '=' STRING
//	func      := 'not' '(' expr ')'
//	           | ('all' | 'any') '(' [expr {',' expr} [',']] ')'
//
// Example:
//
//	not(os = "aarch64")
//	all(family = "unix", any(arch = "x86_64", arch = "aarch64"))
//
// # Recognized Keys
//
//   - os: operating system (e.g. "linux", "windows", "macos")
//   - arch: CPU architecture (e.g. "x86_64", "aarch64")
//   - family: OS family ("unix", "windows", "wasm")
//
// Expressions are parsed once into a tree and evaluated against a Lookup
// function. A predicate the lookup does not recognize is an error, never a
// silent false: a recognized predicate that does not match the host is a
// clean false, while an unrecognized one is a configuration bug.
package expr
