package foreign

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"tails/internal/ast"
	"tails/internal/evaluator"
	"tails/internal/object"
	"time"

	"github.com/goodsign/monday"
)

// maxDayOffset keeps date arithmetic inside the years time.Time can print.
const maxDayOffset = 100_000_000

func date(t time.Time) *object.Date {
	return &object.Date{Value: t.UTC()}
}

func fnDateNow() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		if err := checkArity("now", len(args), 0, 0, ""); err != nil {
			return nil, err
		}
		return date(time.Now()), nil
	}
}

// fnDate parses an ISO 8601 timestamp or a plain YYYY-MM-DD date. Offsets are
// converted to UTC.
func fnDate() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "date", args, 1, 1, "string")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("date", values, 0)
		if err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return date(t), nil
		}
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			return date(t), nil
		}
		return nil, fmt.Errorf("Invalid date format '%s'. Expected YYYY-MM-DD or ISO 8601 format", s)
	}
}

func shiftDays(name string, sign int, ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
	values, err := evalArgs(ev, name, args, 2, 2, "date, days")
	if err != nil {
		return nil, err
	}
	t, err := dateArg(name, values, 0)
	if err != nil {
		return nil, err
	}
	days, err := numberArg(name, values, 1)
	if err != nil {
		return nil, err
	}
	n := math.Trunc(days)
	if math.Abs(n) > maxDayOffset {
		return nil, fmt.Errorf("%s: date arithmetic overflow", name)
	}
	return date(t.AddDate(0, 0, sign*int(n))), nil
}

func fnDateAdd() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		return shiftDays("date-add", 1, ev, args)
	}
}

func fnDateSubtract() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		return shiftDays("date-subtract", -1, ev, args)
	}
}

func twoDates(ev *evaluator.Evaluator, name string, args []ast.Expression) (time.Time, time.Time, error) {
	values, err := evalArgs(ev, name, args, 2, 2, "date1, date2")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	a, err := dateArg(name, values, 0)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	b, err := dateArg(name, values, 1)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return a, b, nil
}

// fnDateDiff measures from the first date to the second. Every unit is
// truncated toward zero independently.
func fnDateDiff() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		a, b, err := twoDates(ev, "date-diff", args)
		if err != nil {
			return nil, err
		}
		d := b.Sub(a)
		return object.NewMap().
			Put("days", number(math.Trunc(d.Hours()/24))).
			Put("hours", number(math.Trunc(d.Hours()))).
			Put("minutes", number(math.Trunc(d.Minutes()))).
			Put("seconds", number(math.Trunc(d.Seconds()))).
			Put("milliseconds", number(float64(d.Milliseconds()))), nil
	}
}

func fnDateCompare(name string, test func(c int) bool) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		a, b, err := twoDates(ev, name, args)
		if err != nil {
			return nil, err
		}
		return boolean(test(a.Compare(b))), nil
	}
}

type dateParts struct {
	year, month, day     int
	hour, minute, second int
	weekday              int // Sunday is 0
}

func fnDateComponent(name string, part func(d dateParts) int) evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, name, args, 1, 1, "date")
		if err != nil {
			return nil, err
		}
		t, err := dateArg(name, values, 0)
		if err != nil {
			return nil, err
		}
		return number(float64(part(dateParts{
			year:    t.Year(),
			month:   int(t.Month()),
			day:     t.Day(),
			hour:    t.Hour(),
			minute:  t.Minute(),
			second:  t.Second(),
			weekday: int(t.Weekday()),
		}))), nil
	}
}

// fnDateFormat renders a date with strftime directives (%Y-%m-%d). Month and
// day names follow the configured locale or an explicit third argument.
func (r *Registry) fnDateFormat() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "date-format", args, 2, 3, "date, format, optional locale")
		if err != nil {
			return nil, err
		}
		t, err := dateArg("date-format", values, 0)
		if err != nil {
			return nil, err
		}
		format, err := stringArg("date-format", values, 1)
		if err != nil {
			return nil, err
		}
		locale, err := r.localeArg("date-format", values, 2)
		if err != nil {
			return nil, err
		}
		out, err := strftime(t, format, mondayLocale(locale))
		if err != nil {
			return nil, fmt.Errorf("date-format: %w", err)
		}
		return str(out), nil
	}
}

func (r *Registry) fnDateParse() evaluator.Builtin {
	return func(ev *evaluator.Evaluator, args []ast.Expression) (object.Object, error) {
		values, err := evalArgs(ev, "date-parse", args, 2, 3, "date_string, format, optional locale")
		if err != nil {
			return nil, err
		}
		s, err := stringArg("date-parse", values, 0)
		if err != nil {
			return nil, err
		}
		format, err := stringArg("date-parse", values, 1)
		if err != nil {
			return nil, err
		}
		locale, err := r.localeArg("date-parse", values, 2)
		if err != nil {
			return nil, err
		}
		layout, err := strptimeLayout(format)
		if err != nil {
			return nil, fmt.Errorf("date-parse: %w", err)
		}
		t, err := monday.ParseInLocation(layout, s, time.UTC, mondayLocale(locale))
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s' using format '%s'", s, format)
		}
		return date(t), nil
	}
}

// localeArg reads an optional locale argument, defaulting to the configured
// locale.
func (r *Registry) localeArg(name string, values []object.Object, i int) (string, error) {
	if i >= len(values) {
		return r.config.Locale, nil
	}
	return stringArg(name, values, i)
}

// directive is one strftime conversion: either a Go layout fragment or a
// function for conversions Go layouts cannot express.
type directive struct {
	layout string
	render func(t time.Time) string
}

var directives = map[byte]directive{
	'Y': {layout: "2006"},
	'y': {layout: "06"},
	'm': {layout: "01"},
	'd': {layout: "02"},
	'e': {layout: "_2"},
	'H': {layout: "15"},
	'I': {layout: "03"},
	'M': {layout: "04"},
	'S': {layout: "05"},
	'p': {layout: "PM"},
	'b': {layout: "Jan"},
	'h': {layout: "Jan"},
	'B': {layout: "January"},
	'a': {layout: "Mon"},
	'A': {layout: "Monday"},
	'j': {layout: "002"},
	'Z': {layout: "MST"},
	'z': {layout: "-0700"},
	'F': {layout: "2006-01-02"},
	'T': {layout: "15:04:05"},
	'D': {layout: "01/02/06"},
	'R': {layout: "15:04"},
	'u': {render: func(t time.Time) string {
		if t.Weekday() == time.Sunday {
			return "7"
		}
		return strconv.Itoa(int(t.Weekday()))
	}},
	'w': {render: func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) }},
	's': {render: func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) }},
	'f': {render: func(t time.Time) string { return fmt.Sprintf("%09d", t.Nanosecond()) }},
}

// strftime formats each directive separately so literal text is never read
// as a Go layout token.
func strftime(t time.Time, format string, locale monday.Locale) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("format ends with a lone '%%'")
		}
		i++
		switch format[i] {
		case '%':
			sb.WriteByte('%')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		default:
			d, ok := directives[format[i]]
			if !ok {
				return "", fmt.Errorf("unsupported directive '%%%c'", format[i])
			}
			if d.render != nil {
				sb.WriteString(d.render(t))
			} else {
				sb.WriteString(monday.Format(t, d.layout, locale))
			}
		}
	}
	return sb.String(), nil
}

// strptimeLayout converts strftime directives into a single Go layout.
func strptimeLayout(format string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("format ends with a lone '%%'")
		}
		i++
		if format[i] == '%' {
			sb.WriteByte('%')
			continue
		}
		d, ok := directives[format[i]]
		if !ok || d.layout == "" {
			return "", fmt.Errorf("directive '%%%c' cannot be used for parsing", format[i])
		}
		sb.WriteString(d.layout)
	}
	return sb.String(), nil
}

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"nl_be": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"sv":    monday.LocaleSvSE,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"nb":    monday.LocaleNbNO,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"zh_tw": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"cs":    monday.LocaleCsCZ,
}

// mondayLocale maps a BCP 47 tag such as "de-AT" to the closest monday
// locale, falling back to the language alone and then to US English.
func mondayLocale(locale string) monday.Locale {
	key := strings.ToLower(strings.ReplaceAll(locale, "-", "_"))
	if l, ok := mondayLocales[key]; ok {
		return l
	}
	if lang, _, found := strings.Cut(key, "_"); found {
		if l, ok := mondayLocales[lang]; ok {
			return l
		}
	}
	return monday.LocaleEnUS
}
