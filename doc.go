// Package rpnjit compiles single-variable expressions in reverse Polish
// notation into native functions.
//
// An expression is a sequence of tokens separated by spaces where needed.
// Numbers, the constants pi, phi, and e, and the variable x (or t) push a
// value; every operator and function pops its operands and pushes its result.
// "x 2 ^ 1 +" is x²+1, and "2 5 -" is -3: the operand pushed earlier is the
// left one. The operators are
//
//	arithmetic   + - * /
//	power        ^; "2 3 ^" is 8
//	factorial    !, over reals; "2.5 !" is 2.5·1.5·0.5
//	comparison   = <> > >= < <=, 1 if true and 0 otherwise
//	select       ?; "c a b ?" is a if c is nonzero and b otherwise
//
// and the functions are sin, cos, tan, asin, acos, atan, exp, log, log10,
// sqrt, floor, fabs, and wave, which takes amplitude, frequency, and phase
// and computes amp·sin(hz+phase). An expression must leave exactly one value.
//
// Compile lexes and compiles the expression to a graph in the ir package,
// then hands it to a Backend. The default backend generates WebAssembly and
// runs it with wazero; Precise interprets the graph with arbitrary-precision
// arithmetic instead.
//
// Two quirks of the language are kept by default. Exponents in numbers have
// no sign, so "1e-5" is 1, then subtraction, then 5; SignedExponents changes
// that. phi is 1.61803 rather than the golden ratio; ExactPhi changes that.
package rpnjit
