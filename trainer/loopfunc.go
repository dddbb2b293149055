package trainer

import "context"
import "log/slog"
import "math"

import "github.com/pkg/errors"

import "github.com/neurlang/crystal/learning"

// NewLoopFunc returns the training loop: for every epoch set the learning rate
// from the schedule, train one epoch, evaluate and record. It returns the last
// evaluation. There is no early stopping; the loop only ends early when ctx is done.
func NewLoopFunc(epochs int, opt *learning.Adam, schedule learning.Schedule,
	trainEpoch func() (float64, error), evaluate func() (Evaluation, error),
	history *History, run string) func(ctx context.Context) (Evaluation, error) {

	return func(ctx context.Context) (last Evaluation, err error) {
		for epoch := 0; epoch < epochs; epoch++ {
			if err := ctx.Err(); err != nil {
				return last, err
			}
			var lr = schedule.Rate(epoch)
			opt.SetLR(lr)

			trainLoss, err := trainEpoch()
			if err != nil {
				return last, errors.Wrapf(err, "epoch %d", epoch)
			}
			if math.IsNaN(trainLoss) || math.IsInf(trainLoss, 0) {
				return last, errors.Errorf("epoch %d: training diverged (loss %v)", epoch, trainLoss)
			}
			last, err = evaluate()
			if err != nil {
				return last, errors.Wrapf(err, "epoch %d", epoch)
			}

			slog.Info("epoch", "epoch", epoch+1, "of", epochs, "lr", lr,
				"train_loss", trainLoss, "test_mse", last.MSE, "test_mae", last.MAE)

			if err := history.Record(run, Epoch{
				Epoch:     epoch,
				LR:        lr,
				TrainLoss: trainLoss,
				TestMSE:   last.MSE,
				TestMAE:   last.MAE,
			}); err != nil {
				return last, err
			}
		}
		return last, nil
	}
}
