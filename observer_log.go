package batches

import "github.com/rs/zerolog"

// logObserver writes run and batch events to a zerolog logger.
type logObserver struct {
	log zerolog.Logger
}

func newLogObserver(l zerolog.Logger) *logObserver {
	return &logObserver{log: l.With().Str("component", Namespace).Logger()}
}

func (o *logObserver) RunStarted(ri RunInfo) {
	o.log.Debug().
		Stringer("mode", ri.Mode).
		Int("batch_size", ri.BatchSize).
		Int("estimated_size", ri.EstimatedSize).
		Msg("run started")
}

func (o *logObserver) RunFinished(ri RunInfo, rs RunSummary) {
	ev := o.log.Info()
	if rs.Err != nil {
		ev = o.log.Error().Err(rs.Err)
	}
	ev.Stringer("mode", ri.Mode).
		Int("batch_size", ri.BatchSize).
		Int("launched", rs.Launched).
		Int("completed", rs.Completed).
		Int("failed", rs.Failed).
		Int("abandoned", rs.Abandoned).
		Bool("cancelled", rs.Cancelled).
		Dur("duration", rs.Duration).
		Msg("run finished")
}

func (o *logObserver) BatchStarted(bi BatchInfo) {
	o.log.Debug().
		Stringer("mode", bi.Mode).
		Int("batch", bi.Index).
		Int("size", bi.Size).
		Msg("batch started")
}

func (o *logObserver) BatchFinished(bi BatchInfo, bs BatchSummary) {
	o.log.Debug().
		Stringer("mode", bi.Mode).
		Int("batch", bi.Index).
		Int("harvested", bs.Harvested).
		Int("failed", bs.Failed).
		Dur("duration", bs.Duration).
		Msg("batch finished")
}
