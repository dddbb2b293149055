// Package main trains a small regression network mapping the Matthews
// coefficient of a protein crystal to its solvent content in percent.
package main
