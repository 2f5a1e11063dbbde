package foreign

import (
	"bytes"
	"fmt"
	"sort"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/yuin/goldmark"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	numfmt "golang.org/x/text/number"
)

// fnTextMarkdown renders CommonMark to HTML.
func fnTextMarkdown() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "markdown", args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		src, err := stringArg("markdown", values, 0)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(src), &buf); err != nil {
			return nil, fmt.Errorf("markdown: failed to convert: %w", err)
		}
		return str(buf.String()), nil
	}
}

func (r *Registry) printer(name string, values []object.Object, i int) (*message.Printer, error) {
	locale, err := r.localeArg(name, values, i)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%s: unknown locale '%s'", name, locale)
	}
	return message.NewPrinter(tag), nil
}

// fnTextFormatNumber groups digits the way the locale does: 1,234.5 in
// en-US and 1.234,5 in de-DE.
func (r *Registry) fnTextFormatNumber() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "format-number", args, 1, 2, "number, optional locale")
		if err != nil {
			return nil, err
		}
		n, err := numberArg("format-number", values, 0)
		if err != nil {
			return nil, err
		}
		p, err := r.printer("format-number", values, 1)
		if err != nil {
			return nil, err
		}
		return str(p.Sprint(numfmt.Decimal(n))), nil
	}
}

func (r *Registry) fnTextFormatCurrency() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "format-currency", args, 2, 3, "number, currency code, optional locale")
		if err != nil {
			return nil, err
		}
		n, err := numberArg("format-currency", values, 0)
		if err != nil {
			return nil, err
		}
		code, err := stringArg("format-currency", values, 1)
		if err != nil {
			return nil, err
		}
		unit, err := currency.ParseISO(code)
		if err != nil {
			return nil, fmt.Errorf("format-currency: invalid currency code '%s'", code)
		}
		p, err := r.printer("format-currency", values, 2)
		if err != nil {
			return nil, err
		}
		return str(p.Sprint(currency.Symbol(unit.Amount(n)))), nil
	}
}

// fnTextFormatPercent treats 0.25 as 25%.
func (r *Registry) fnTextFormatPercent() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "format-percent", args, 1, 2, "number, optional locale")
		if err != nil {
			return nil, err
		}
		n, err := numberArg("format-percent", values, 0)
		if err != nil {
			return nil, err
		}
		p, err := r.printer("format-percent", values, 1)
		if err != nil {
			return nil, err
		}
		return str(p.Sprint(numfmt.Percent(n))), nil
	}
}

// fnTextFuzzyFind returns the candidates that contain the query's
// characters in order, closest match first. Matching ignores case.
func fnTextFuzzyFind() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "fuzzy-find", args, 2, 2, "query, candidates")
		if err != nil {
			return nil, err
		}
		query, err := stringArg("fuzzy-find", values, 0)
		if err != nil {
			return nil, err
		}
		items, err := listArg("fuzzy-find", values, 1)
		if err != nil {
			return nil, err
		}
		candidates := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(*object.String)
			if !ok {
				return nil, fmt.Errorf("fuzzy-find candidates must be strings, got %s", object.TypeName(item))
			}
			candidates[i] = s.Value
		}
		ranks := fuzzy.RankFindFold(query, candidates)
		sort.Stable(ranks)
		out := make([]object.Object, len(ranks))
		for i, rank := range ranks {
			out[i] = str(rank.Target)
		}
		return object.NewList(out...), nil
	}
}
