package trainer

import "log/slog"
import "os"

import "github.com/neurlang/crystal/net/feedforward"

// Resume loads the weights in dstmodel into net when resume is set. A missing
// file is not an error: training starts from the fresh weights.
// It reports whether weights were loaded.
func Resume(net *feedforward.FeedforwardNetwork, resume *bool, dstmodel *string) (bool, error) {
	if resume == nil || !*resume || dstmodel == nil || *dstmodel == "" {
		return false, nil
	}
	if _, err := os.Stat(*dstmodel); os.IsNotExist(err) {
		slog.Warn("nothing to resume, starting fresh", "model", *dstmodel)
		return false, nil
	}
	if err := net.ReadZlibWeightsFromFile(*dstmodel); err != nil {
		return false, err
	}
	slog.Info("resumed", "model", *dstmodel, "params", net.Len())
	return true, nil
}
