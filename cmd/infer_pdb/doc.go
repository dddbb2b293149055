// Package main evaluates a trained model on a PDB export and prints the error
// report over every usable entry, together with the worst predictions.
package main
