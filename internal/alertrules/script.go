package alertrules

import (
	"fmt"
	"log/slog"
	"os"

	"go.starlark.net/starlark"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// ScriptFunc is the function a rules script must define.
const ScriptFunc = "alert_level"

// MaxScriptSteps bounds one evaluation, and the load of the script itself.
// A script that runs past it is cancelled.
const MaxScriptSteps = 1_000_000

// Engine evaluates alert levels, optionally through a Starlark script.
type Engine struct {
	path   string
	fn     starlark.Callable
	logger *slog.Logger
}

// NewBuiltin returns an engine that only uses the built-in rules.
func NewBuiltin() *Engine {
	return &Engine{logger: slog.New(slog.DiscardHandler)}
}

// Load compiles the script at path. An empty path yields the built-in rules.
func Load(path string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if path == "" {
		return &Engine{logger: logger}, nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, fmt.Errorf("failed to read alert rules %s: %w", path, err)
	}

	thread := &starlark.Thread{
		Name: "load:alert_rules",
		Print: func(_ *starlark.Thread, msg string) {
			logger.Debug("alert rules", "print", msg)
		},
	}
	thread.SetMaxExecutionSteps(MaxScriptSteps)
	globals, err := starlark.ExecFile(thread, path, content, nil) //nolint:staticcheck // SA1019: will migrate to ExecFileOptions later
	if err != nil {
		return nil, fmt.Errorf("alert rules %s: %w", path, err)
	}
	globals.Freeze()

	v, ok := globals[ScriptFunc]
	if !ok {
		return nil, fmt.Errorf("alert rules %s: function %s is not defined", path, ScriptFunc)
	}
	fn, ok := v.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("alert rules %s: %s is a %s, not a function", path, ScriptFunc, v.Type())
	}

	return &Engine{path: path, fn: fn, logger: logger}, nil
}

// Scripted reports whether a script is in use.
func (e *Engine) Scripted() bool { return e.fn != nil }

// Level evaluates the script, falling back to the built-in rules when no
// script is loaded or it fails, including running out of steps.
func (e *Engine) Level(p core.Predictions, f core.Features) Level {
	if e.fn == nil {
		return BuiltinLevel(p, f)
	}

	thread := &starlark.Thread{Name: ScriptFunc}
	thread.SetMaxExecutionSteps(MaxScriptSteps)
	out, err := starlark.Call(thread, e.fn, starlark.Tuple{predictionsDict(p), featuresDict(f)}, nil)
	if err != nil {
		e.logger.Warn("alert rules script failed, using built-in rules", "path", e.path, "error", err)
		return BuiltinLevel(p, f)
	}
	s, ok := starlark.AsString(out)
	if !ok {
		e.logger.Warn("alert rules script returned a non-string", "path", e.path, "type", out.Type())
		return BuiltinLevel(p, f)
	}
	l, ok := ParseLevel(s)
	if !ok {
		e.logger.Warn("alert rules script returned an unknown level", "path", e.path, "level", s)
		return BuiltinLevel(p, f)
	}
	return l
}

// Assess evaluates the level and builds the assessment.
func (e *Engine) Assess(p core.Predictions, f core.Features) Assessment {
	return Assess(e.Level(p, f), f)
}

func predictionsDict(p core.Predictions) *starlark.Dict {
	d := starlark.NewDict(3)
	_ = d.SetKey(starlark.String("performance_label"), starlark.String(p.PerformanceLabel))
	_ = d.SetKey(starlark.String("risk_label"), starlark.String(p.RiskLabel))
	_ = d.SetKey(starlark.String("dropout_label"), starlark.String(p.DropoutLabel))
	return d
}

func featuresDict(f core.Features) *starlark.Dict {
	fields := []struct {
		name  string
		value float64
	}{
		{"past_avg", float64(f.PastAvg)},
		{"past_count", float64(f.PastCount)},
		{"internal_pct", float64(f.InternalPct)},
		{"attendance_pct", float64(f.AttendancePct)},
		{"behavior_pct", float64(f.BehaviorPct)},
		{"performance_trend", float64(f.PerformanceTrend)},
		{"performance_overall", float64(f.PerformanceOverall)},
		{"risk_score", float64(f.RiskScore)},
		{"dropout_score", float64(f.DropoutScore)},
		{"present_att", float64(f.PresentAtt)},
		{"prev_att", float64(f.PrevAtt)},
	}
	d := starlark.NewDict(len(fields))
	for _, fld := range fields {
		_ = d.SetKey(starlark.String(fld.name), starlark.Float(fld.value))
	}
	return d
}
