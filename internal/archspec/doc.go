// Package archspec parses the compact string encodings used to describe a
// part-segmentation network: layer widths (`64_b128_c256`), skip connections
// (`4_1_ga`), weight fillers (`gauss_0.001`) and channel-scale lists
// (`x*8_y*8_z*8`).
//
// Every parser returns an error wrapping ErrSyntax for malformed input so the
// caller can abort generation before any layer is emitted.
package archspec
