package foreign

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"
)

// fnSysRun runs a shell command and returns {output, exit_code}. Output is
// stdout followed by stderr on its own line.
func fnSysRun() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("run requires a command argument")
		}
		values, err := evalArgs(ev, "run", args, 1, 1, "command")
		if err != nil {
			return nil, err
		}
		command, ok := values[0].(*object.String)
		if !ok {
			return nil, fmt.Errorf("run command must be a string")
		}

		var stdout, stderr bytes.Buffer
		cmd := exec.Command("sh", "-c", command.Value)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		exitCode := 0
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return nil, fmt.Errorf("Failed to execute command: %w", err)
			}
			exitCode = exitErr.ExitCode()
		}
		slog.Debug("run", slog.String("command", command.Value), slog.Int("exit_code", exitCode))

		output := stdout.String()
		if stderr.Len() > 0 {
			if output != "" {
				output += "\n"
			}
			output += stderr.String()
		}
		return object.NewMap().
			Put("output", str(output)).
			Put("exit_code", number(float64(exitCode))), nil
	}
}

// fnSysWait sleeps for a number of seconds.
func fnSysWait() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("wait requires a duration argument")
		}
		values, err := evalArgs(ev, "wait", args, 1, 1, "seconds")
		if err != nil {
			return nil, err
		}
		n, ok := values[0].(*object.Number)
		if !ok {
			return nil, fmt.Errorf("wait duration must be a number")
		}
		if n.Value < 0 {
			return nil, fmt.Errorf("wait duration cannot be negative")
		}
		time.Sleep(time.Duration(n.Value * float64(time.Second)))
		return object.NULL, nil
	}
}

func fnSysEnv() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "env", args, 1, 1, "name")
		if err != nil {
			return nil, err
		}
		name, err := stringArg("env", values, 0)
		if err != nil {
			return nil, err
		}
		if v, ok := os.LookupEnv(name); ok {
			return str(v), nil
		}
		return object.NULL, nil
	}
}
