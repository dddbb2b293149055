// Package main trains a regression network predicting the Matthews coefficient
// of a protein crystal from its unit cell, space group and sequence length.
// The best model by test MSE is written to -dstmodel, the test split error
// report is printed when training ends.
package main
