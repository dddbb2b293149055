// Package pdb provides the protein crystallography dataset: gzip compressed,
// newline delimited JSON records of PDB entries, and the two regression
// problems built on top of them (Matthews coefficient and solvent content).
package pdb
