// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scout/config"
	"scout/settings"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg      *config.Config
	Rpt      *config.Report
	Log      *zap.Logger
	Settings settings.Store

	// used by export subcommand
	Overwrite    bool
	DefaultStyle []byte

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Debug reports whether debug report is being collected.
func (e *LocalEnv) Debug() bool {
	return e.Rpt != nil
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}

// RememberProject records dir as the last used project. Nothing is done when
// settings are not available.
func (e *LocalEnv) RememberProject(dir string) error {
	if e.Settings == nil {
		return nil
	}
	s, err := e.Settings.Load()
	if err != nil {
		return err
	}
	if s.LastProjectPath == dir {
		return nil
	}
	s.LastProjectPath = dir
	return e.Settings.Save(s)
}
