package dialect

import "embed"

// builtinFS embeds the built-in dialect definitions: SystemVerilog (.sv,
// read through the yosys systemverilog plugin) and Verilog (.v, read with
// read_verilog + synth -auto-top).
//
//go:embed builtin/*.yml
var builtinFS embed.FS
