package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"testing"
)

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}

	return rec
}

func TestMake_Defaults(t *testing.T) {
	logger := Make(nil)

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	if logger.caller != DefaultCaller || logger.pretty != DefaultPretty {
		t.Errorf("caller=%v pretty=%v", logger.caller, logger.pretty)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithLevel(LevelWarn), WithPretty(false))

	logger.Trace("trace message")
	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Fatalf("unexpected output below level: %s", buf.String())
	}

	logger.Warn("warn message")
	logger.Error("error message")

	for _, want := range []string{"warn message", "error message"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q: %s", want, buf.String())
		}
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf,
		WithLevel(LevelTrace),
		WithFormat(FormatJSON),
		WithPretty(false),
		WithTimeLayout("none"),
	)

	logger.TraceContext(t.Context(), "lookup", slog.String("name", "${x}"))

	rec := decode(t, &buf)

	want := map[string]any{"level": "TRACE", "msg": "lookup", "name": "${x}"}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}

	if _, ok := rec[slog.TimeKey]; ok {
		t.Errorf("time present with layout none: %v", rec)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	tests := []struct {
		layout string
		match  string
	}{
		{"RFC3339", `^\d{4}-\d\d-\d\dT`},
		{"rfc-3339-nano", `\.\d+`},
		{"dateonly", `^\d{4}-\d\d-\d\d$`},
		{"kitchen", `^\d{1,2}:\d\d[AP]M$`},
		{"2006", `^\d{4}$`},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf,
				WithFormat(FormatJSON),
				WithPretty(false),
				WithTimeLayout(tt.layout),
			).Info("tick")

			got, _ := decode(t, &buf)[slog.TimeKey].(string)
			if !regexp.MustCompile(tt.match).MatchString(got) {
				t.Errorf("time %q does not match %s", got, tt.match)
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithCaller(true)).
		Info("where")

	src, ok := decode(t, &buf)[slog.SourceKey].(map[string]any)
	if !ok {
		t.Fatalf("source missing: %s", buf.String())
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want log_test.go", file)
	}
}

func TestConfig_DefaultCaller(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { defaultLog.Store(&prev) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithFormat(FormatJSON), WithPretty(false), WithCaller(true))
	Info("where")

	src, ok := decode(t, &buf)[slog.SourceKey].(map[string]any)
	if !ok {
		t.Fatalf("source missing: %s", buf.String())
	}

	if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("source file = %q, want log_test.go", file)
	}
}

func TestLogger_Pretty(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   string
	}{
		{
			name:   "text",
			format: FormatText,
			want:   "level=INFO msg=hello user=alice req.id=7 req.ok=true\n",
		},
		{
			name:   "json",
			format: FormatJSON,
			want: "{\n  level: INFO,\n  msg: hello,\n  user: alice,\n" +
				"  req.id: 7,\n  req.ok: true\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf, WithFormat(tt.format), WithTimeLayout("none")).
				With(slog.String("user", "alice"))

			logger.Logger.WithGroup("req").Info("hello", "id", 7, "ok", true)

			if got := plain(buf.String()); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}

			if !strings.Contains(buf.String(), colorGreen+"INFO") {
				t.Errorf("level not colorized: %q", buf.String())
			}
		})
	}
}

func TestLogger_PrettyNestedGroup(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none")).Info("nested",
		slog.Group("a", slog.Group("b", slog.Int("c", 1)), slog.String("d", "x")))

	want := "level=INFO msg=nested a.b.c=1 a.d=x\n"
	if got := plain(buf.String()); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelDebug))
	wrapped := base.Wrap(WithFormat(FormatJSON))

	if wrapped.Level() != LevelDebug {
		t.Errorf("Level() = %v, want %v", wrapped.Level(), LevelDebug)
	}

	if wrapped.Format() != FormatJSON || base.Format() != FormatText {
		t.Errorf("formats: base=%v wrapped=%v", base.Format(), wrapped.Format())
	}

	var zero Logger

	if got := zero.Wrap(WithLevel(LevelError)).Level(); got != LevelError {
		t.Errorf("zero.Wrap Level() = %v, want %v", got, LevelError)
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var logger Logger

	logger.Trace("ignored")
	logger.ErrorContext(t.Context(), "ignored")

	if logger.With(slog.Int("n", 1)).Logger != nil {
		t.Error("With on zero Logger created a handler")
	}

	if logger.Level() != DefaultLevel || logger.Format() != DefaultFormat {
		t.Errorf("zero Logger level=%v format=%v", logger.Level(), logger.Format())
	}
}

func TestLogger_InvalidFormatDiscards(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(Format(9))).Error("dropped")

	if buf.Len() > 0 {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestConfig_Default(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { defaultLog.Store(&prev) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithFormat(FormatJSON), WithPretty(false))
	Warn("package level", slog.Bool("ok", true))

	rec := decode(t, &buf)
	if rec["msg"] != "package level" || rec["ok"] != true {
		t.Errorf("record = %v", rec)
	}

	buf.Reset()
	Debug("filtered")

	if buf.Len() > 0 {
		t.Errorf("unexpected debug output: %s", buf.String())
	}
}
