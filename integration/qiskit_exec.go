package integration

import (
	"bytes"
	_ "embed"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/juju/fslock"
	"github.com/pkg/errors"
)

//go:embed qpy_check.py
var embedCheckScript []byte

// ErrUnavailable is returned when no Python interpreter with Qiskit is
// installed.
var ErrUnavailable = errors.New("python with qiskit is not available")

const (
	scriptName     = "__qpy_check.py"
	scriptLockName = "__qpy_check.lock"
)

// Qiskit runs QPY checks through the Python reference implementation.
type Qiskit struct {
	python  string
	script  string
	Version string
}

// NewQiskit locates python3 and writes the check script into dir. Several
// test processes may share dir.
func NewQiskit(dir string) (*Qiskit, error) {
	python, err := exec.LookPath("python3")
	if err != nil {
		return nil, ErrUnavailable
	}
	script := filepath.Join(dir, scriptName)
	lock := fslock.New(filepath.Join(dir, scriptLockName))
	if err := lock.Lock(); err != nil {
		return nil, errors.Wrap(err, "lock check script")
	}
	if _, err := os.Stat(script); os.IsNotExist(err) {
		if err := os.WriteFile(script, embedCheckScript, 0o600); err != nil {
			lock.Unlock()
			return nil, errors.Wrap(err, "write check script")
		}
	}
	lock.Unlock()

	q := &Qiskit{python: python, script: script}
	out, err := q.run("version")
	if err != nil {
		return nil, ErrUnavailable
	}
	q.Version = strings.TrimSpace(out)
	return q, nil
}

func (q *Qiskit) run(args ...string) (string, error) {
	cmd := exec.Command(q.python, append([]string{q.script}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "%s %s: %s", q.script, strings.Join(args, " "), stderr.String())
	}
	return stdout.String(), nil
}

// Report prints the params of the first n instructions and the operation
// counts of the first circuit in path, as Qiskit sees them.
func (q *Qiskit) Report(path string, n int) (string, error) {
	return q.run("report", path, strconv.Itoa(n))
}

// Redump loads src with Qiskit and writes it back to dst.
func (q *Qiskit) Redump(src, dst string) error {
	_, err := q.run("redump", src, dst)
	return err
}
