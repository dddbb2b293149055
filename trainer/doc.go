// Package trainer provides high-level training orchestration: closures that
// run one epoch of minibatch Adam, evaluate the network on the test split and
// keep the best model on disk, a loop tying them together with the learning
// rate schedule, and an optional sqlite history of every run.
package trainer
