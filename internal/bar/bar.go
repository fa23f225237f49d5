// Package bar declares the status bar with the running sway instance.
package bar

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"codeberg.org/mutker/hoststatus/internal/logger"
	"github.com/joshuarubin/go-sway"
)

const (
	ErrConnectFailed = errors.ErrorCode("bar_connect_failed")
	ErrCommandFailed = errors.ErrorCode("bar_command_failed")
	ErrInvalidDef    = errors.ErrorCode("bar_invalid_definition")
)

// Definition describes the bar to declare.
type Definition struct {
	ID       string
	Position string
	Command  string
	Font     string
}

// Runner executes one bar-manager command.
type Runner interface {
	RunCommand(ctx context.Context, command string) error
}

// Commands returns the IPC commands that declare the bar, in order.
func Commands(def Definition) []string {
	return []string{
		fmt.Sprintf("bar %s position %s", def.ID, def.Position),
		fmt.Sprintf("bar %s status_command %s", def.ID, quote(def.Command)),
		fmt.Sprintf("bar %s font %s", def.ID, def.Font),
	}
}

// quote wraps an argument in double quotes for the sway command parser, which
// strips them and unescapes the content before the shell sees it.
func quote(arg string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(arg) + `"`
}

// Register runs the declaration commands and stops at the first failure.
func Register(ctx context.Context, r Runner, def Definition) error {
	errFactory := errors.New()

	if def.ID == "" || def.Command == "" {
		return errFactory.WithData(ErrInvalidDef, "bar id and command are required")
	}

	for _, cmd := range Commands(def) {
		if err := r.RunCommand(ctx, cmd); err != nil {
			return errFactory.Wrap(ErrCommandFailed, err).WithMessage("bar command failed: " + cmd)
		}
		logger.Debug().Str("command", cmd).Msg("Bar command applied")
	}

	logger.Info().Str("bar", def.ID).Msg("Status bar registered")

	return nil
}

// SwayRunner sends commands over the sway IPC socket from $SWAYSOCK.
type SwayRunner struct {
	client sway.Client
}

// NewSwayRunner connects to sway. The connection lives as long as ctx.
func NewSwayRunner(ctx context.Context) (*SwayRunner, error) {
	client, err := sway.New(ctx)
	if err != nil {
		return nil, errors.New().Wrap(ErrConnectFailed, err)
	}

	return &SwayRunner{client: client}, nil
}

func (r *SwayRunner) RunCommand(ctx context.Context, command string) error {
	replies, err := r.client.RunCommand(ctx, command)
	if err != nil {
		return err
	}

	for _, reply := range replies {
		if !reply.Success {
			return fmt.Errorf("sway: %s", reply.Error)
		}
	}

	return nil
}
