package cli

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/koustreak/rowcursor/internal/errs"
)

// parseArg converts a typed command-line argument into a bind value:
// int:5, float:1.5, text:abc, blob:<hex> or null.
func parseArg(s string) (any, error) {
	if strings.EqualFold(s, "null") {
		return nil, nil
	}
	kind, raw, ok := strings.Cut(s, ":")
	if !ok {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "argument %q has no type prefix", s)
	}

	switch strings.ToLower(kind) {
	case "int":
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid int argument "+strconv.Quote(raw), err)
		}
		return v, nil
	case "float":
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid float argument "+strconv.Quote(raw), err)
		}
		return v, nil
	case "text":
		return raw, nil
	case "blob":
		v, err := hex.DecodeString(raw)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid blob argument "+strconv.Quote(raw), err)
		}
		return v, nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown argument type %q", kind)
	}
}

func parseArgs(raw []string) ([]any, error) {
	args := make([]any, len(raw))
	for i, s := range raw {
		v, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
