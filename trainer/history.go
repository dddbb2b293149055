package trainer

import "database/sql"
import "time"

import "github.com/google/uuid"
import _ "github.com/mattn/go-sqlite3"
import "github.com/pkg/errors"
import "gopkg.in/yaml.v3"

import "github.com/neurlang/crystal/learning"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	problem    TEXT NOT NULL,
	started_at TEXT NOT NULL,
	hyper      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS epochs (
	run_id     TEXT NOT NULL REFERENCES runs(id),
	epoch      INTEGER NOT NULL,
	lr         REAL NOT NULL,
	train_loss REAL NOT NULL,
	test_mse   REAL NOT NULL,
	test_mae   REAL NOT NULL,
	PRIMARY KEY (run_id, epoch)
);`

// Epoch is one row of training history
type Epoch struct {
	Epoch     int
	LR        float64
	TrainLoss float64 // on standardized targets
	TestMSE   float64 // in physical units
	TestMAE   float64
}

// Run describes a recorded training run
type Run struct {
	ID        string
	Problem   string
	StartedAt time.Time
	Hyper     learning.HyperParameters
}

// History records training runs in a sqlite database. A nil *History records nothing.
type History struct {
	db *sql.DB
}

// OpenHistory opens or creates the database at path. An empty path returns a nil History.
func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, nil
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open history %q", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "create history schema in %q", path)
	}
	return &History{db: db}, nil
}

// BeginRun registers a new run and returns its id
func (h *History) BeginRun(problem string, hyper learning.HyperParameters) (string, error) {
	var id = uuid.New().String()
	if h == nil {
		return id, nil
	}
	snapshot, err := yaml.Marshal(hyper)
	if err != nil {
		return "", errors.Wrap(err, "encode hyperparameters")
	}
	_, err = h.db.Exec(`INSERT INTO runs (id, problem, started_at, hyper) VALUES (?, ?, ?, ?)`,
		id, problem, time.Now().UTC().Format(time.RFC3339Nano), string(snapshot))
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}
	return id, nil
}

// Record stores one epoch of a run
func (h *History) Record(run string, e Epoch) error {
	if h == nil {
		return nil
	}
	_, err := h.db.Exec(`INSERT INTO epochs (run_id, epoch, lr, train_loss, test_mse, test_mae) VALUES (?, ?, ?, ?, ?, ?)`,
		run, e.Epoch, e.LR, e.TrainLoss, e.TestMSE, e.TestMAE)
	return errors.Wrapf(err, "record epoch %d of run %s", e.Epoch, run)
}

// Epochs returns the recorded epochs of a run in order
func (h *History) Epochs(run string) ([]Epoch, error) {
	if h == nil {
		return nil, nil
	}
	rows, err := h.db.Query(`SELECT epoch, lr, train_loss, test_mse, test_mae FROM epochs WHERE run_id = ? ORDER BY epoch`, run)
	if err != nil {
		return nil, errors.Wrap(err, "query epochs")
	}
	defer rows.Close()
	var out []Epoch
	for rows.Next() {
		var e Epoch
		if err := rows.Scan(&e.Epoch, &e.LR, &e.TrainLoss, &e.TestMSE, &e.TestMAE); err != nil {
			return nil, errors.Wrap(err, "scan epoch")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "read epochs")
}

// Runs returns every recorded run of a problem, oldest first
func (h *History) Runs(problem string) ([]Run, error) {
	if h == nil {
		return nil, nil
	}
	rows, err := h.db.Query(`SELECT id, problem, started_at, hyper FROM runs WHERE problem = ? ORDER BY started_at`, problem)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var started, hyper string
		if err := rows.Scan(&r.ID, &r.Problem, &started, &hyper); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, errors.Wrapf(err, "run %s start time", r.ID)
		}
		if err := yaml.Unmarshal([]byte(hyper), &r.Hyper); err != nil {
			return nil, errors.Wrapf(err, "run %s hyperparameters", r.ID)
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "read runs")
}

// Close closes the database
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	return h.db.Close()
}
