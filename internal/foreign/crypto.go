package foreign

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
)

func hashFunc(name string, sum func([]byte) []byte) evaluator.Builtin {
	return stringTransform(name, func(s string) string {
		return hex.EncodeToString(sum([]byte(s)))
	})
}

func fnCryptoSha256() evaluator.Builtin {
	return hashFunc("sha256", func(b []byte) []byte {
		h := sha256.Sum256(b)
		return h[:]
	})
}

func fnCryptoMd5() evaluator.Builtin {
	return hashFunc("md5", func(b []byte) []byte {
		h := md5.Sum(b)
		return h[:]
	})
}

// fnCryptoHmacSha256 takes the key first, then the message.
func fnCryptoHmacSha256() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "hmac-sha256", args, 2, 2, "key, message")
		if err != nil {
			return nil, err
		}
		key, err := stringArg("hmac-sha256", values, 0)
		if err != nil {
			return nil, err
		}
		message, err := stringArg("hmac-sha256", values, 1)
		if err != nil {
			return nil, err
		}
		h := hmac.New(sha256.New, []byte(key))
		h.Write([]byte(message))
		return str(hex.EncodeToString(h.Sum(nil))), nil
	}
}
