package foreign

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

// fnIoFsRead never fails on I/O; the result object reports what happened:
// {content, size, exists, error}.
func fnIoFsRead() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "read", args, 1, 1, "file path")
		if err != nil {
			return nil, err
		}
		path, err := stringArg("read", values, 0)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			exists := !errors.Is(err, fs.ErrNotExist)
			message := fmt.Sprintf("Failed to read file: %v", err)
			if !exists {
				message = "File not found"
			}
			return object.NewMap().
				Put("content", str("")).
				Put("size", number(0)).
				Put("exists", boolean(exists)).
				Put("error", str(message)), nil
		}
		return object.NewMap().
			Put("content", str(string(data))).
			Put("size", number(float64(len(data)))).
			Put("exists", object.TRUE).
			Put("error", object.NULL), nil
	}
}

// fnIoFsWrite writes strings as is and any other value as it prints.
func fnIoFsWrite() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "write", args, 2, 2, "file path, content")
		if err != nil {
			return nil, err
		}
		path, err := stringArg("write", values, 0)
		if err != nil {
			return nil, err
		}
		content := values[1].Inspect()
		result := object.NewMap().Put("path", str(path))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return result.
				Put("success", object.FALSE).
				Put("bytes_written", number(0)).
				Put("error", str(fmt.Sprintf("Failed to write file: %v", err))), nil
		}
		return result.
			Put("success", object.TRUE).
			Put("bytes_written", number(float64(len(content)))).
			Put("error", object.NULL), nil
	}
}

func statTest(name string, test func(fs.FileInfo) bool) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "path")
		if err != nil {
			return nil, err
		}
		path, err := stringArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		return boolean(err == nil && test(info)), nil
	}
}

func fnIoFsFileExists() evaluator.Builtin {
	return statTest("file-exists", func(info fs.FileInfo) bool { return info.Mode().IsRegular() })
}

func fnIoFsDirExists() evaluator.Builtin {
	return statTest("dir-exists", func(info fs.FileInfo) bool { return info.IsDir() })
}

func fnIoFsFileSize() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "file-size", args, 1, 1, "path")
		if err != nil {
			return nil, err
		}
		path, err := stringArg("file-size", values, 0)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("Error getting file size: %w", err)
		}
		return number(float64(info.Size())), nil
	}
}
