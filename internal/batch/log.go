package batch

import (
	"log/slog"
)

// LogObserver writes one console line per device result.
func LogObserver(log *slog.Logger) Observer {
	return ObserverFunc(func(r Result) {
		attrs := []any{"device", r.Device, "kind", string(r.Kind)}
		if r.Detail != "" {
			attrs = append(attrs, "detail", r.Detail)
		}
		switch r.Kind {
		case KindOK:
			log.Info(r.Message, attrs...)
		case KindSkipped:
			log.Warn(r.Message, attrs...)
		default:
			if r.Err != nil {
				attrs = append(attrs, "err", r.Err)
			}
			log.Error(r.Message, attrs...)
		}
	})
}

// LogSummary writes the closing line of a run.
func LogSummary(log *slog.Logger, rep Report) {
	log.Info("done",
		"run_id", rep.RunID.String(),
		"devices", len(rep.Results),
		"ok", rep.Count(KindOK),
		"failed", rep.Failures(),
		"skipped", rep.Count(KindSkipped),
		"disabled", rep.Disabled,
		"aborted", rep.Aborted,
		"elapsed", rep.Elapsed.Round(1e6).String(),
	)
}
