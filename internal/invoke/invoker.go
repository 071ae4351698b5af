// Package invoke spawns plugin processes and classifies their outcomes. One
// invocation is one fresh process: action as the first argument, parameter
// object on stdin, one JSON document read from stdout after the process
// exits.
package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
)

const (
	// maxStderrBytes caps the amount of stderr captured from plugin execution.
	maxStderrBytes = 64 * 1024

	// terminationGracePeriod is the time we wait after SIGTERM before sending SIGKILL.
	terminationGracePeriod = 5 * time.Second

	// DefaultTimeout bounds a plugin invocation when the config doesn't say otherwise.
	DefaultTimeout = 60 * time.Second
)

// Outcome classifies a completed invocation per the two-tier error model.
type Outcome string

const (
	// OutcomeSuccess: normal exit, no error field.
	OutcomeSuccess Outcome = "success"
	// OutcomeDomainError: the plugin ran and reported a problem through the
	// error field, with a normal exit.
	OutcomeDomainError Outcome = "domain_error"
	// OutcomeProtocolError: the plugin could not be invoked at all (non-zero
	// exit).
	OutcomeProtocolError Outcome = "protocol_error"
)

// Invocation is the record of one plugin call.
type Invocation struct {
	ID        string
	Plugin    string
	Action    string
	Params    map[string]any
	Result    protocol.Result
	Outcome   Outcome
	ExitCode  int
	Stderr    string
	StartedAt time.Time
	Duration  time.Duration
}

// ErrorMessage returns the result's error field, if any.
func (inv *Invocation) ErrorMessage() string {
	if inv.Result == nil {
		return ""
	}
	return inv.Result.ErrorMessage()
}

// Invoker executes plugin actions as subprocesses.
type Invoker struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an Invoker. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Invoker{
		timeout: timeout,
		logger:  log.WithComponent("invoke"),
	}
}

// Invoke runs one action against a discovered plugin. A returned error means
// the process could not be run to a readable response (spawn failure,
// timeout, undecodable stdout); every in-protocol outcome, including both
// error tiers, comes back as an Invocation.
func (i *Invoker) Invoke(ctx context.Context, plug *plugin.Plugin, action string, params map[string]any) (*Invocation, error) {
	if params == nil {
		params = map[string]any{}
	}

	inv := &Invocation{
		ID:        uuid.NewString(),
		Plugin:    plug.Name,
		Action:    action,
		Params:    params,
		StartedAt: time.Now(),
	}
	logger := i.logger.With("invocation_id", inv.ID, "plugin", plug.Name, "action", action)

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	stdout, stderr, exitCode, err := i.spawn(ctx, plug.Entrypoint, action, payload, logger)
	inv.Duration = time.Since(inv.StartedAt)
	inv.Stderr = stderr
	inv.ExitCode = exitCode
	if err != nil {
		return nil, err
	}

	result, err := protocol.DecodeResult(stdout)
	if err != nil {
		logger.Error("failed to decode plugin response", "error", err, "stdout", string(stdout))
		return nil, fmt.Errorf("decode response: %w", err)
	}
	inv.Result = result

	// Classification order matters: a non-zero exit is a protocol failure
	// even though it also carries an error-shaped body; an error field with
	// a normal exit is a domain failure regardless of its content.
	switch {
	case exitCode != 0:
		inv.Outcome = OutcomeProtocolError
	case result.IsError():
		inv.Outcome = OutcomeDomainError
	default:
		inv.Outcome = OutcomeSuccess
	}

	logger.Debug("invocation complete", "outcome", inv.Outcome, "exit_code", exitCode, "duration", inv.Duration)
	return inv, nil
}

// Metadata invokes the reserved metadata action and decodes the identity record.
func (i *Invoker) Metadata(ctx context.Context, plug *plugin.Plugin) (protocol.Metadata, error) {
	var meta protocol.Metadata
	if err := i.introspect(ctx, plug, protocol.ActionMetadata, &meta); err != nil {
		return protocol.Metadata{}, err
	}
	return meta, nil
}

// Actions invokes the reserved actions action and decodes the catalog.
func (i *Invoker) Actions(ctx context.Context, plug *plugin.Plugin) (map[string]protocol.ActionSpec, error) {
	var catalog map[string]protocol.ActionSpec
	if err := i.introspect(ctx, plug, protocol.ActionActions, &catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (i *Invoker) introspect(ctx context.Context, plug *plugin.Plugin, action string, out any) error {
	inv, err := i.Invoke(ctx, plug, action, nil)
	if err != nil {
		return err
	}
	if inv.Outcome != OutcomeSuccess {
		return fmt.Errorf("plugin %s %s failed: %s", plug.Name, action, inv.ErrorMessage())
	}

	raw, err := json.Marshal(inv.Result)
	if err != nil {
		return fmt.Errorf("re-encode %s response: %w", action, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}

// spawn runs the plugin process, writes the parameter payload to stdin, and
// returns stdout, capped stderr, and the exit code once the process has
// terminated. Timeout enforcement is SIGTERM first, SIGKILL after a grace
// period.
func (i *Invoker) spawn(ctx context.Context, entrypoint, action string, payload []byte, logger *slog.Logger) ([]byte, string, int, error) {
	timeoutTimer := time.NewTimer(i.timeout)
	defer timeoutTimer.Stop()

	// Termination is managed below, not by CommandContext. The plugin gets
	// its own process group so timeout signals reach any children it spawned;
	// WaitDelay keeps Wait from blocking on pipes an orphaned child still
	// holds after the plugin itself has exited.
	cmd := exec.Command(entrypoint, action)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = terminationGracePeriod

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, "", -1, fmt.Errorf("create stdin pipe: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("spawning plugin", "entrypoint", entrypoint, "timeout", i.timeout)

	if err := cmd.Start(); err != nil {
		return nil, "", -1, fmt.Errorf("start process: %w", err)
	}

	writeErr := make(chan error, 1)
	go func() {
		defer stdin.Close()
		if _, err := stdin.Write(payload); err != nil {
			writeErr <- fmt.Errorf("write params: %w", err)
			return
		}
		writeErr <- nil
	}()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		i.terminate(cmd, waitErr, logger)
		return nil, truncateStderr(stderr.String()), -1, ctx.Err()

	case <-timeoutTimer.C:
		logger.Warn("plugin execution timed out, sending SIGTERM")
		i.terminate(cmd, waitErr, logger)
		return nil, truncateStderr(stderr.String()), -1, context.DeadlineExceeded

	case err := <-waitErr:
		// A plugin may legally exit without reading stdin (introspection
		// actions ignore params); Wait closing the pipe then races the write
		// goroutine. The exit status is the truth, not the broken pipe.
		if werr := <-writeErr; werr != nil && !errors.Is(werr, os.ErrClosed) && !errors.Is(werr, syscall.EPIPE) {
			return nil, truncateStderr(stderr.String()), -1, werr
		}

		exitCode := 0
		if err != nil {
			switch {
			case errors.Is(err, exec.ErrWaitDelay):
				// Process exited cleanly; an orphaned child kept the pipes
				// open past the grace period.
				logger.Warn("plugin left pipes open after exit, output truncated at grace period")
			default:
				exitErr, ok := err.(*exec.ExitError)
				if !ok {
					return nil, truncateStderr(stderr.String()), -1, fmt.Errorf("wait for process: %w", err)
				}
				exitCode = exitErr.ExitCode()
				logger.Warn("plugin exited with non-zero status", "exit_code", exitCode)
			}
		}

		return stdout.Bytes(), truncateStderr(stderr.String()), exitCode, nil
	}
}

// terminate sends SIGTERM, waits out the grace period, then SIGKILLs.
// Signals go to the whole process group so children spawned by the
// entrypoint (a shell's sleep, a helper binary) die with it; otherwise an
// orphan holding the stdout pipe keeps Wait pinned for its full runtime.
func (i *Invoker) terminate(cmd *exec.Cmd, waitErr chan error, logger *slog.Logger) {
	signalGroup(cmd, syscall.SIGTERM, logger)

	grace := time.NewTimer(terminationGracePeriod)
	defer grace.Stop()

	select {
	case <-waitErr:
		logger.Info("plugin exited after SIGTERM")
	case <-grace.C:
		logger.Warn("plugin did not exit after SIGTERM, sending SIGKILL")
		signalGroup(cmd, syscall.SIGKILL, logger)
		<-waitErr
	}
}

func signalGroup(cmd *exec.Cmd, sig syscall.Signal, logger *slog.Logger) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, sig); err != nil {
		// ESRCH means the group is already gone; anything else falls back
		// to signalling the direct child.
		if err == syscall.ESRCH {
			return
		}
		if serr := cmd.Process.Signal(sig); serr != nil {
			logger.Error("failed to signal plugin", "signal", sig, "error", serr)
		}
	}
}

// truncateStderr truncates stderr to maxStderrBytes.
func truncateStderr(s string) string {
	if len(s) > maxStderrBytes {
		return s[:maxStderrBytes]
	}
	return s
}
